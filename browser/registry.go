package browser

import (
	"fmt"
	"sort"
	"strings"
)

const DefaultDriver = "chromedp"

var drivers = map[string]Driver{
	"chromedp":   ChromeDPDriver{},
	"rod":        RodDriver{},
	"playwright": PlaywrightDriver{},
}

// Lookup returns the driver with the given name. An empty name selects DefaultDriver.
func Lookup(name string) (Driver, error) {
	if name == "" {
		name = DefaultDriver
	}
	if d, ok := drivers[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown browser driver %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the registered drivers in alphabetical order.
func Names() []string {
	var names []string
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
