package schema

import "fmt"

// OutputMode selects which methods are generated for a field.
type OutputMode uint8

// Output modes. OutputUnset behaves like OutputBoth.
const (
	OutputUnset OutputMode = iota
	OutputSkip
	OutputHeader
	OutputSource
	OutputBoth
	OutputTemplate
	OutputForeach
	OutputForeachAdd
	OutputInitializerList
)

var modeNames = map[OutputMode]string{
	OutputSkip:            "SKIP",
	OutputHeader:          "HEADER",
	OutputSource:          "SOURCE",
	OutputBoth:            "BOTH",
	OutputTemplate:        "TEMPLATE",
	OutputForeach:         "FOREACH",
	OutputForeachAdd:      "FOREACH_ADD",
	OutputInitializerList: "INITIALIZER_LIST",
}

// capability is one generation behavior derived from an output mode.
type capability uint8

const (
	capTemplate capability = 1 << iota
	capForeach
	capForeachAdd
	capInitializerList
	capHeader
	capSource
)

// modeCapabilities is the single source of truth for the Use* predicates.
var modeCapabilities = map[OutputMode]capability{
	OutputSkip:            0,
	OutputHeader:          capHeader,
	OutputSource:          capSource,
	OutputBoth:            capHeader | capSource,
	OutputTemplate:        capTemplate | capHeader,
	OutputForeach:         capTemplate | capForeach | capHeader,
	OutputForeachAdd:      capTemplate | capForeach | capForeachAdd | capHeader,
	OutputInitializerList: capTemplate | capForeach | capForeachAdd | capInitializerList | capHeader,
}

// Effective maps OutputUnset to OutputBoth.
func (m OutputMode) Effective() OutputMode {
	if m == OutputUnset {
		return OutputBoth
	}
	return m
}

func (m OutputMode) has(c capability) bool {
	return modeCapabilities[m.Effective()]&c != 0
}

// UseTemplate reports whether methods are templates defined in the header.
func (m OutputMode) UseTemplate() bool { return m.has(capTemplate) }

// UseForeach reports whether the method takes a container of values.
func (m OutputMode) UseForeach() bool { return m.has(capForeach) }

// UseForeachAdd reports whether each element is passed to the single value method.
func (m OutputMode) UseForeachAdd() bool { return m.has(capForeachAdd) }

// UseInitializerList reports whether the method takes a std::initializer_list.
func (m OutputMode) UseInitializerList() bool { return m.has(capInitializerList) }

// UseHeader reports whether anything is written to the header.
func (m OutputMode) UseHeader() bool { return m.has(capHeader) }

// UseSource reports whether a definition is written to the source file.
func (m OutputMode) UseSource() bool { return m.has(capSource) }

// String returns the mode name as used in annotations.
func (m OutputMode) String() string {
	if name, ok := modeNames[m.Effective()]; ok {
		return name
	}
	return fmt.Sprintf("OutputMode(%d)", uint8(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m OutputMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OutputMode) UnmarshalText(text []byte) error {
	mode, err := ParseOutputMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseOutputMode returns the mode with the given annotation name.
func ParseOutputMode(name string) (OutputMode, error) {
	if name == "UNSET" {
		return OutputUnset, nil
	}
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return OutputUnset, fmt.Errorf("schema: unknown output mode %q", name)
}
