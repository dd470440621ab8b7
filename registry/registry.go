// Package registry wires every built-in provider this tree ships into a
// providers.Registry. It lives outside package providers itself because
// the structured parsers (providers/structured/json and friends) import
// providers for the Parser contract, and this wiring needs all of them
// at once — putting it inside providers would be an import cycle.
package registry

import (
	"github.com/oxhq/gnawtree/providers"
	"github.com/oxhq/gnawtree/providers/bash"
	"github.com/oxhq/gnawtree/providers/c"
	"github.com/oxhq/gnawtree/providers/cpp"
	"github.com/oxhq/gnawtree/providers/css"
	"github.com/oxhq/gnawtree/providers/generic"
	"github.com/oxhq/gnawtree/providers/golang"
	"github.com/oxhq/gnawtree/providers/html"
	"github.com/oxhq/gnawtree/providers/java"
	"github.com/oxhq/gnawtree/providers/javascript"
	"github.com/oxhq/gnawtree/providers/php"
	"github.com/oxhq/gnawtree/providers/python"
	"github.com/oxhq/gnawtree/providers/rust"
	"github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/providers/structured/toml"
	"github.com/oxhq/gnawtree/providers/structured/xml"
	"github.com/oxhq/gnawtree/providers/structured/yaml"
	"github.com/oxhq/gnawtree/providers/typescript"
)

// Default wires every built-in language and structured-format provider,
// plus the generic single-node fallback. Grounded on the teacher's
// cmd/morfx/providers.go registerBuiltinProviders, which drives its
// registry off a plain list of provider factory functions rather than
// any discovery mechanism; there is no external plugin loading here
// since this repo has no equivalent to the teacher's
// registry.AutoRegister.
func Default() *providers.Registry {
	r := providers.NewRegistry()

	for _, factory := range []func() providers.Parser{
		func() providers.Parser { return golang.New() },
		func() providers.Parser { return python.New() },
		func() providers.Parser { return javascript.New() },
		func() providers.Parser { return typescript.New() },
		func() providers.Parser { return java.New() },
		func() providers.Parser { return c.New() },
		func() providers.Parser { return cpp.New() },
		func() providers.Parser { return rust.New() },
		func() providers.Parser { return php.New() },
		func() providers.Parser { return bash.New() },
		func() providers.Parser { return html.New() },
		func() providers.Parser { return css.New() },
		func() providers.Parser { return json.New() },
		func() providers.Parser { return yaml.New() },
		func() providers.Parser { return toml.New() },
		func() providers.Parser { return xml.New() },
	} {
		r.Register(factory())
	}

	r.SetGeneric(generic.New())
	return r
}
