// gen is a codegen cmd for generating the builtin type table from the
// default configuration.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"
)

// Types the default configuration owns beside the reserved '@' and '%' keys.
var plainBuiltins = []string{"string", "bytes"}

func main() {
	buf, err := os.ReadFile("default.yaml")
	if err != nil {
		log.Fatal("reading default config:", err)
	}
	var doc struct {
		TypeMap []struct {
			Key string `yaml:"key"`
		} `yaml:"type_map"`
	}
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		log.Fatal("parsing default config:", err)
	}
	f := jen.NewFile("config")
	f.HeaderComment("Code generated by internal/gen.go, DO NOT EDIT.")
	f.Comment("builtinTypes holds the type map keys owned by the default configuration.")
	f.Var().Id("builtinTypes").Op("=").Map(jen.String()).Struct().Values(jen.DictFunc(func(d jen.Dict) {
		for _, name := range plainBuiltins {
			d[jen.Lit(name)] = jen.Values()
		}
		for _, e := range doc.TypeMap {
			if strings.HasPrefix(e.Key, "@") || strings.HasPrefix(e.Key, "%") {
				d[jen.Lit(e.Key)] = jen.Values()
			}
		}
	}))
	if err := f.Save("builtin_gen.go"); err != nil {
		log.Fatal("writing go file:", err)
	}
}
