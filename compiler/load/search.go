package load

import (
	"fmt"
	"strings"

	"github.com/syssam/protobuilder/schema"
)

// SearchMode selects which messages of a file get builders.
type SearchMode uint8

// Search modes, selected by the message part of the --proto flag.
const (
	// Explicit selects the listed message full names.
	Explicit SearchMode = iota
	// AllTopLevel ("*") selects the top-level messages of the first file.
	AllTopLevel
	// TransitiveRepeated ("*+") adds messages of the same file reached
	// through repeated or map fields.
	TransitiveRepeated
	// TransitiveAll ("**") adds every message of the same file reached
	// through message fields.
	TransitiveAll
)

var modeNames = map[SearchMode]string{
	Explicit:           "explicit",
	AllTopLevel:        "*",
	TransitiveRepeated: "*+",
	TransitiveAll:      "**",
}

func (m SearchMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("SearchMode(%d)", uint8(m))
}

// ProtoFlag is a parsed --proto flag: "<messages>:<files>".
type ProtoFlag struct {
	Mode SearchMode
	// Names are the message full names of an Explicit flag.
	Names []string
	Files []string
}

// ParseProtoFlag parses "<messages>:<files>". The message part is "**",
// "*+", "*" or a comma separated list of full names. Files are comma
// separated; empty entries are skipped.
func ParseProtoFlag(flag string) (*ProtoFlag, error) {
	messages, files, _ := strings.Cut(flag, ":")
	if messages == "" {
		return nil, fmt.Errorf("load: proto flag %q names no messages", flag)
	}
	p := &ProtoFlag{}
	switch messages {
	case "**":
		p.Mode = TransitiveAll
	case "*+":
		p.Mode = TransitiveRepeated
	case "*":
		p.Mode = AllTopLevel
	default:
		p.Mode = Explicit
		for name := range strings.SplitSeq(messages, ",") {
			if name != "" {
				p.Names = append(p.Names, name)
			}
		}
	}
	for name := range strings.SplitSeq(files, ",") {
		if name != "" {
			p.Files = append(p.Files, name)
		}
	}
	return p, nil
}

// Messages returns the messages of f selected by mode: the top-level
// messages first, then the messages found breadth first, in discovery
// order. Only messages defined in f are followed, and a map field counts
// as its value message. Explicit mode returns the top-level messages.
func Messages(f *schema.File, mode SearchMode) []*schema.Message {
	out := append([]*schema.Message(nil), f.Messages...)
	if mode != TransitiveRepeated && mode != TransitiveAll {
		return out
	}
	added := make(map[*schema.Message]bool, len(out))
	queued := make(map[*schema.Message]bool, len(out))
	for _, m := range out {
		added[m], queued[m] = true, true
	}
	queue := append([]*schema.Message(nil), out...)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, fd := range m.Fields {
			if fd.Kind != schema.KindMessage {
				continue
			}
			target := fd.Message
			if fd.IsMap() {
				if target = fd.MapValueMessage(); target == nil {
					continue
				}
			}
			if target == nil || target.File != f || added[target] {
				continue
			}
			if fd.IsRepeated() || mode == TransitiveAll {
				added[target] = true
				out = append(out, target)
			}
			if !queued[target] && !target.MapEntry {
				queued[target] = true
				queue = append(queue, target)
			}
		}
	}
	return out
}
