package anki

const frontTemplate = `<div class="front">
{{#Image}}<div class="image-container">{{Image}}</div>{{/Image}}
<div class="word">{{Word}}</div>
{{#Phonetic}}<div class="phonetic">/{{Phonetic}}/</div>{{/Phonetic}}
</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="meaning">{{Meaning}}</div>
{{#MemoryCue}}<div class="cue">{{MemoryCue}}</div>{{/MemoryCue}}
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const reverseFrontTemplate = `<div class="front">
<div class="meaning">{{Meaning}}</div>
</div>`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="word">{{Word}}</div>
{{#Phonetic}}<div class="phonetic">/{{Phonetic}}/</div>{{/Phonetic}}
{{#Image}}<div class="image-container">{{Image}}</div>{{/Image}}
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const css = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #31333f;
  background-color: white;
}

.front, .back {
  padding: 20px;
}

.image-container {
  margin: 20px auto;
  max-width: 400px;
}

.image-container img {
  max-width: 100%;
  height: auto;
  border-radius: 8px;
}

.word {
  font-size: 32px;
  font-weight: bold;
  margin: 20px 0 5px;
}

.phonetic {
  color: #666;
}

.meaning {
  font-size: 28px;
  font-weight: bold;
  color: #c0392b;
  margin: 20px 0;
}

.cue {
  font-size: 16px;
  color: #7f8c8d;
  font-style: italic;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`
