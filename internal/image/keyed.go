package image

import "context"

// WithAPIKey returns a producer that always uses key, regardless of the
// credential in the request. It is used when the image service has its
// own key that differs from the session credential. An empty key returns p
// unchanged.
func WithAPIKey(p Producer, key string) Producer {
	if p == nil || key == "" {
		return p
	}
	return &keyed{Producer: p, key: key}
}

type keyed struct {
	Producer
	key string
}

func (k *keyed) Generate(ctx context.Context, req Request) (*Image, error) {
	req.APIKey = k.key
	return k.Producer.Generate(ctx, req)
}
