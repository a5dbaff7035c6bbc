package catalog

import (
	"errors"

	"github.com/julianails/tg_booking_bot/pkg/utils/errs"
)

// ErrUnknownService — запрошен ключ услуги, которого нет в каталоге.
var ErrUnknownService = errors.New("unknown service")

type ServiceType struct {
	Key         string
	Name        string
	Description string
	DurationMin int
	Price       int
}

// Catalog is the read-only registry of bookable services. It is built
// once from configuration and never mutated afterwards, so reads need
// no locking.
type Catalog struct {
	order []string
	byKey map[string]ServiceType
}

func New(services []ServiceType) (*Catalog, error) {
	if len(services) == 0 {
		return nil, errs.New("catalog requires at least one service")
	}
	c := &Catalog{byKey: make(map[string]ServiceType, len(services))}
	for _, s := range services {
		if s.Key == "" {
			return nil, errs.New("service key is empty").Arg("name", s.Name)
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, errs.New("duplicate service key").Arg("key", s.Key)
		}
		if s.DurationMin <= 0 {
			return nil, errs.New("service duration must be positive").Arg("key", s.Key)
		}
		if s.Price < 0 {
			return nil, errs.New("service price must be non-negative").Arg("key", s.Key)
		}
		c.order = append(c.order, s.Key)
		c.byKey[s.Key] = s
	}
	return c, nil
}

// List returns services in configuration order.
func (c *Catalog) List() []ServiceType {
	out := make([]ServiceType, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

func (c *Catalog) Get(key string) (ServiceType, error) {
	s, ok := c.byKey[key]
	if !ok {
		return ServiceType{}, ErrUnknownService
	}
	return s, nil
}
