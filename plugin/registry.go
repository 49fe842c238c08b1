package plugin

import "fmt"

// Outputs is a global map of OutputAdapter plugins selectable by name.
var Outputs = map[string]func() OutputAdapter{
	"midi": func() OutputAdapter {
		return NewMIDIOutput()
	},
	"memory": func() OutputAdapter {
		return NewMemoryOutput()
	},
}

func OutputLookup(name string) (OutputAdapter, error) {
	factory, ok := Outputs[name]
	if !ok {
		return nil, fmt.Errorf("unknown output: %s", name)
	}
	return factory(), nil
}
