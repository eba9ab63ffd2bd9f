package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownClass      = errors.New("unknown vehicle class")
	ErrNoEligibleVehicle = errors.New("no eligible vehicle class")
)

// Catalog is an immutable vehicle class table built at startup.
type Catalog struct {
	classes []VehicleClass
	byID    map[string]VehicleClass
}

// New validates the class table and builds the catalog. Capacity bounds must
// satisfy 1 <= min <= max and ids must be unique.
func New(classes []VehicleClass) (*Catalog, error) {
	c := &Catalog{
		classes: make([]VehicleClass, 0, len(classes)),
		byID:    make(map[string]VehicleClass, len(classes)),
	}
	for _, cls := range classes {
		if cls.ID == "" {
			return nil, fmt.Errorf("vehicle class without id")
		}
		if cls.MinPassengers < 1 || cls.MinPassengers > cls.MaxPassengers {
			return nil, fmt.Errorf("vehicle class %s: invalid capacity bounds %d..%d",
				cls.ID, cls.MinPassengers, cls.MaxPassengers)
		}
		if _, dup := c.byID[cls.ID]; dup {
			return nil, fmt.Errorf("duplicate vehicle class id %s", cls.ID)
		}
		c.classes = append(c.classes, cls)
		c.byID[cls.ID] = cls
	}
	return c, nil
}

// List returns all classes in registration order.
func (c *Catalog) List() []VehicleClass {
	out := make([]VehicleClass, len(c.classes))
	copy(out, c.classes)
	return out
}

func (c *Catalog) Get(id string) (VehicleClass, error) {
	cls, ok := c.byID[id]
	if !ok {
		return VehicleClass{}, ErrUnknownClass
	}
	return cls, nil
}

// Known reports whether id is a registered class.
func (c *Catalog) Known(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Suggest returns the classes that can carry the given passenger count,
// cheapest base fare first. The first entry is the recommended choice.
func (c *Catalog) Suggest(passengers int) ([]VehicleClass, error) {
	var out []VehicleClass
	for _, cls := range c.classes {
		if cls.Fits(passengers) {
			out = append(out, cls)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoEligibleVehicle
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BaseFare < out[j].BaseFare })
	return out, nil
}
