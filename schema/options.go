package schema

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// FieldBuilderOptions is the builder annotation of a field, and the policy
// stored for a key in the configuration type map.
type FieldBuilderOptions struct {
	Output            OutputMode        `json:"output,omitempty" yaml:"output,omitempty"`
	Type              *string           `json:"type,omitempty" yaml:"type,omitempty"`
	DecoratedType     string            `json:"decorated_type,omitempty" yaml:"decorated_type,omitempty"`
	Name              *string           `json:"name,omitempty" yaml:"name,omitempty"`
	Value             *string           `json:"value,omitempty" yaml:"value,omitempty"`
	Conversion        *string           `json:"conversion,omitempty" yaml:"conversion,omitempty"`
	Predicate         *string           `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Include           []string          `json:"include,omitempty" yaml:"include,omitempty"`
	SourceInclude     []string          `json:"source_include,omitempty" yaml:"source_include,omitempty"`
	Dependency        []string          `json:"dependency,omitempty" yaml:"dependency,omitempty"`
	Recurse           *bool             `json:"recurse,omitempty" yaml:"recurse,omitempty"`
	Automatic         bool              `json:"automatic,omitempty" yaml:"automatic,omitempty"`
	Param             string            `json:"param,omitempty" yaml:"param,omitempty"`
	Macro             *string           `json:"macro,omitempty" yaml:"macro,omitempty"`
	Data              map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
	AddSourceLocation bool              `json:"add_source_location,omitempty" yaml:"add_source_location,omitempty"`
	Override          bool              `json:"override,omitempty" yaml:"override,omitempty"`
}

// Mode returns the effective output mode. An unset mode reads as BOTH.
func (o *FieldBuilderOptions) Mode() OutputMode {
	if o == nil {
		return OutputBoth
	}
	return o.Output.Effective()
}

// HasType reports whether the type was set, possibly to the empty string.
func (o *FieldBuilderOptions) HasType() bool { return o != nil && o.Type != nil }

// GetType returns the type or "".
func (o *FieldBuilderOptions) GetType() string {
	if o == nil || o.Type == nil {
		return ""
	}
	return *o.Type
}

// HasValue reports whether a literal value was set, possibly to the empty string.
func (o *FieldBuilderOptions) HasValue() bool { return o != nil && o.Value != nil }

// GetValue returns the literal value or "".
func (o *FieldBuilderOptions) GetValue() string {
	if o == nil || o.Value == nil {
		return ""
	}
	return *o.Value
}

// HasName reports whether a name was set, possibly to the empty string.
func (o *FieldBuilderOptions) HasName() bool { return o != nil && o.Name != nil }

// GetName returns the name or "".
func (o *FieldBuilderOptions) GetName() string {
	if o == nil || o.Name == nil {
		return ""
	}
	return *o.Name
}

// HasConversion reports whether a conversion was set, possibly to the
// empty string to drop the conversion of a type default.
func (o *FieldBuilderOptions) HasConversion() bool { return o != nil && o.Conversion != nil }

// GetConversion returns the conversion expression or "".
func (o *FieldBuilderOptions) GetConversion() string {
	if o == nil || o.Conversion == nil {
		return ""
	}
	return *o.Conversion
}

// HasPredicate reports whether a predicate was set, possibly to the empty string.
func (o *FieldBuilderOptions) HasPredicate() bool { return o != nil && o.Predicate != nil }

// GetPredicate returns the predicate expression or "".
func (o *FieldBuilderOptions) GetPredicate() string {
	if o == nil || o.Predicate == nil {
		return ""
	}
	return *o.Predicate
}

// HasMacro reports whether a macro reference was set.
func (o *FieldBuilderOptions) HasMacro() bool { return o != nil && o.Macro != nil }

// GetMacro returns the referenced macro or "".
func (o *FieldBuilderOptions) GetMacro() string {
	if o == nil || o.Macro == nil {
		return ""
	}
	return *o.Macro
}

// HasRecurse reports whether recursion was explicitly configured.
func (o *FieldBuilderOptions) HasRecurse() bool { return o != nil && o.Recurse != nil }

// GetRecurse returns the configured recursion flag, false when unset.
func (o *FieldBuilderOptions) GetRecurse() bool { return o.HasRecurse() && *o.Recurse }

// Clone returns a deep copy of the options.
func (o *FieldBuilderOptions) Clone() *FieldBuilderOptions {
	if o == nil {
		return &FieldBuilderOptions{}
	}
	c := *o
	c.Type = clonePtr(o.Type)
	c.Value = clonePtr(o.Value)
	c.Conversion = clonePtr(o.Conversion)
	c.Predicate = clonePtr(o.Predicate)
	c.Recurse = clonePtr(o.Recurse)
	c.Name = clonePtr(o.Name)
	c.Macro = clonePtr(o.Macro)
	c.Include = slices.Clone(o.Include)
	c.SourceInclude = slices.Clone(o.SourceInclude)
	c.Dependency = slices.Clone(o.Dependency)
	c.Data = maps.Clone(o.Data)
	return &c
}

// Merge merges from into o: fields set in from overwrite, repeated fields
// are appended and data entries of from win.
func (o *FieldBuilderOptions) Merge(from *FieldBuilderOptions) {
	if from == nil {
		return
	}
	if from.Output != OutputUnset {
		o.Output = from.Output
	}
	if from.Type != nil {
		o.Type = clonePtr(from.Type)
	}
	mergeString(&o.DecoratedType, from.DecoratedType)
	if from.Name != nil {
		o.Name = clonePtr(from.Name)
	}
	if from.Value != nil {
		o.Value = clonePtr(from.Value)
	}
	if from.Conversion != nil {
		o.Conversion = clonePtr(from.Conversion)
	}
	if from.Predicate != nil {
		o.Predicate = clonePtr(from.Predicate)
	}
	o.Include = append(o.Include, from.Include...)
	o.SourceInclude = append(o.SourceInclude, from.SourceInclude...)
	o.Dependency = append(o.Dependency, from.Dependency...)
	if from.Recurse != nil {
		o.Recurse = clonePtr(from.Recurse)
	}
	o.Automatic = o.Automatic || from.Automatic
	mergeString(&o.Param, from.Param)
	if from.Macro != nil {
		o.Macro = clonePtr(from.Macro)
	}
	if len(from.Data) > 0 {
		if o.Data == nil {
			o.Data = make(map[string]string, len(from.Data))
		}
		maps.Copy(o.Data, from.Data)
	}
	o.AddSourceLocation = o.AddSourceLocation || from.AddSourceLocation
	o.Override = o.Override || from.Override
}

// DebugString returns the set fields as short text format on a single
// line, in field number order: `output: FOREACH type: "int" recurse: true`.
func (o *FieldBuilderOptions) DebugString() string {
	if o == nil {
		return ""
	}
	var parts []string
	str := func(name, v string) { parts = append(parts, name+": "+strconv.Quote(v)) }
	opt := func(name string, v *string) {
		if v != nil {
			str(name, *v)
		}
	}
	flag := func(name string, v bool) {
		if v {
			parts = append(parts, name+": true")
		}
	}
	if o.Output != OutputUnset {
		parts = append(parts, "output: "+o.Output.String())
	}
	opt("type", o.Type)
	if o.DecoratedType != "" {
		str("decorated_type", o.DecoratedType)
	}
	opt("name", o.Name)
	opt("value", o.Value)
	opt("conversion", o.Conversion)
	opt("predicate", o.Predicate)
	for _, v := range o.Include {
		str("include", v)
	}
	for _, v := range o.SourceInclude {
		str("source_include", v)
	}
	for _, v := range o.Dependency {
		str("dependency", v)
	}
	if o.Recurse != nil {
		parts = append(parts, "recurse: "+strconv.FormatBool(*o.Recurse))
	}
	flag("automatic", o.Automatic)
	if o.Param != "" {
		str("param", o.Param)
	}
	opt("macro", o.Macro)
	for _, k := range slices.Sorted(maps.Keys(o.Data)) {
		parts = append(parts, "data { key: "+strconv.Quote(k)+" value: "+strconv.Quote(o.Data[k])+" }")
	}
	flag("add_source_location", o.AddSourceLocation)
	flag("override", o.Override)
	return strings.Join(parts, " ")
}

// MessageBuilderOptions is the builder annotation of a message.
type MessageBuilderOptions struct {
	ClassName      string         `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	RootData       string         `json:"root_data,omitempty" yaml:"root_data,omitempty"`
	RootName       string         `json:"root_name,omitempty" yaml:"root_name,omitempty"`
	BaseClass      []string       `json:"base_class,omitempty" yaml:"base_class,omitempty"`
	Include        []string       `json:"include,omitempty" yaml:"include,omitempty"`
	BuilderInclude []string       `json:"builder_include,omitempty" yaml:"builder_include,omitempty"`
	SourceInclude  []string       `json:"source_include,omitempty" yaml:"source_include,omitempty"`
	UseBuild       *bool          `json:"use_build,omitempty" yaml:"use_build,omitempty"`
	UseStatus      *bool          `json:"use_status,omitempty" yaml:"use_status,omitempty"`
	UseValidator   *bool          `json:"use_validator,omitempty" yaml:"use_validator,omitempty"`
	UseConversion  bool           `json:"use_conversion,omitempty" yaml:"use_conversion,omitempty"`
	TypeMap        []TypeMapEntry `json:"type_map,omitempty" yaml:"type_map,omitempty"`
}

// GetUseBuild returns the use_build flag, false when unset.
func (o *MessageBuilderOptions) GetUseBuild() bool { return o != nil && o.UseBuild != nil && *o.UseBuild }

// GetUseStatus returns the use_status flag, false when unset.
func (o *MessageBuilderOptions) GetUseStatus() bool {
	return o != nil && o.UseStatus != nil && *o.UseStatus
}

// GetUseValidator returns the use_validator flag, false when unset.
func (o *MessageBuilderOptions) GetUseValidator() bool {
	return o != nil && o.UseValidator != nil && *o.UseValidator
}

// HasAnyUse reports whether any of use_build, use_status or use_validator was set.
func (o *MessageBuilderOptions) HasAnyUse() bool {
	return o != nil && (o.UseBuild != nil || o.UseStatus != nil || o.UseValidator != nil)
}

// Clone returns a deep copy of the options.
func (o *MessageBuilderOptions) Clone() *MessageBuilderOptions {
	if o == nil {
		return &MessageBuilderOptions{}
	}
	c := *o
	c.BaseClass = slices.Clone(o.BaseClass)
	c.Include = slices.Clone(o.Include)
	c.BuilderInclude = slices.Clone(o.BuilderInclude)
	c.SourceInclude = slices.Clone(o.SourceInclude)
	c.UseBuild = clonePtr(o.UseBuild)
	c.UseStatus = clonePtr(o.UseStatus)
	c.UseValidator = clonePtr(o.UseValidator)
	c.TypeMap = make([]TypeMapEntry, len(o.TypeMap))
	for i, e := range o.TypeMap {
		c.TypeMap[i] = TypeMapEntry{Key: e.Key, Value: *e.Value.Clone()}
	}
	return &c
}

// TypeMapEntry binds a type map key to its policy.
type TypeMapEntry struct {
	Key   string              `json:"key" yaml:"key"`
	Value FieldBuilderOptions `json:"value" yaml:"value"`
}

// String returns a pointer to s, for optional string options.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for optional bool options.
func Bool(b bool) *bool { return &b }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
