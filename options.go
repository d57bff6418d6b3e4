package keyedstore

// Option is a functional option for configuring a Store.
type Option func(*storeConfig)

type storeConfig struct {
	hash HashFunc
}

func defaultStoreConfig() *storeConfig {
	return &storeConfig{
		hash: DJB2,
	}
}

// WithHashFunc sets the function used to pick a key's bucket.
// Default is DJB2. A nil HashFunc leaves the default in place.
func WithHashFunc(h HashFunc) Option {
	return func(c *storeConfig) {
		if h != nil {
			c.hash = h
		}
	}
}
