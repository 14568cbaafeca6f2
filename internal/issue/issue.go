// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	UnknownExtensionId
	TranspilerNotFoundId
	ConfigImportFailedId
	ConfigResolveFailedId
	OptionsLoadFailedId
	InvalidLoaderId
	EntityDiscoveryFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference documentation for the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range append(slices.Clone(i.docLinks), i.extLinks...) {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

const docsBase = "https://mikro-orm.io/docs/"

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# No ORM configuration found!

None of the candidate config modules exist in the project or its parents.

## Search order
1. Paths from the ` + "`configPaths`" + ` option (package.json or ` + "`MIKRO_ORM_CLI_CONFIG`" + `)
2. ` + "`mikro-orm.config`" + ` with a TypeScript or JavaScript extension
3. ` + "`src/mikro-orm.config.ts`" + `, ` + "`dist/mikro-orm.config.js`" + ` and ` + "`build/mikro-orm.config.js`" + `

## Things you can try
- Create a config module in the project root:
~~~js
// mikro-orm.config.js
module.exports = { dbName: 'app.db' };
~~~
- Point to an existing module:
~~~
$ ormconf show --config ./config/orm.js
~~~
- Empty and whitespace-only files are ignored, check the module has content`,
		docLinks: []HttpLink{docsBase + "configuration"},
	}

	unknownExtensionIssue = &Issue{
		id: UnknownExtensionId,
		mdMsg: `
# TypeScript config without a transpiler!

The native loader only evaluates JavaScript and JSON modules.

## Things you can try
- Install a supported transpiler in the project:
~~~
$ npm install --save-dev esbuild
$ npm install --save-dev @swc/cli @swc/core
~~~
- Select it explicitly:
~~~json
{ "mikro-orm": { "loader": "esbuild" } }
~~~
- Or compile the config to JavaScript and point ` + "`configPaths`" + ` at the output`,
		docLinks: []HttpLink{docsBase + "configuration#using-typescript"},
	}

	transpilerNotFoundIssue = &Issue{
		id: TranspilerNotFoundId,
		mdMsg: `
# Transpiler not installed!

The requested loader needs a transpiler binary that could not be found in
` + "`node_modules/.bin`" + ` or on the PATH.

## Things you can try
- Install it as a dev dependency of the project
- Use ` + "`loader: \"auto\"`" + ` to fall back to the native loader
- Run ` + "`ormconf loader`" + ` to see what is detected`,
		extLinks: []HttpLink{"https://esbuild.github.io/", "https://swc.rs/docs/usage/cli"},
	}

	configImportFailedIssue = &Issue{
		id: ConfigImportFailedId,
		mdMsg: `
# Failed to evaluate the config module!

The module was found but importing it threw, failed to transpile, or
exported a promise that never settled.

## Things you can try
- Run the module directly with node to see the full error
- Check relative imports resolve from the module's directory
- Run with ` + "`--verbose`" + ` to see the error chain`,
	}

	configResolveFailedIssue = &Issue{
		id: ConfigResolveFailedId,
		mdMsg: `
# No config matches the requested context!

The module loaded, but its export does not provide a config for the context
name. A module may export:

- an object, used as-is for its ` + "`contextName`" + ` (or ` + "`default`" + `)
- a function, called with the context name
- an array of objects and functions, searched in order

## Things you can try
- Add ` + "`contextName`" + ` to the matching config object
- Pass a different name:
~~~
$ ormconf show --context replica
~~~`,
		docLinks: []HttpLink{docsBase + "multiple-connections"},
	}

	optionsLoadFailedIssue = &Issue{
		id: OptionsLoadFailedId,
		mdMsg: `
# Invalid loader options!

The ` + "`mikro-orm`" + ` field of package.json does not match the expected shape.

## Accepted fields
~~~json
{
  "mikro-orm": {
    "loader": "auto",
    "configPaths": ["./src/mikro-orm.config.ts"],
    "tsConfigPath": "./tsconfig.json",
    "transpilerArgs": "",
    "verbose": false
  }
}
~~~`,
	}

	invalidLoaderIssue = &Issue{
		id: InvalidLoaderId,
		mdMsg: `
# Unknown loader!

Valid loader values are ` + "`auto`, `native`, `esbuild`, `swc`" + ` and ` + "`false`" + `.

## Things you can try
- Fix ` + "`MIKRO_ORM_CLI_LOADER`" + ` or the ` + "`--loader`" + ` flag
- Remove the setting to use automatic detection`,
	}

	entityDiscoveryFailedIssue = &Issue{
		id: EntityDiscoveryFailedId,
		mdMsg: `
# Entity discovery failed!

An entity module matched by the glob patterns could not be imported.

## Things you can try
- Narrow the patterns so only entity modules match
- Exclude generated files:
~~~
$ ormconf entities 'src/**/*.entity.ts'
~~~`,
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():        configNotFoundIssue,
		unknownExtensionIssue.Id():      unknownExtensionIssue,
		transpilerNotFoundIssue.Id():    transpilerNotFoundIssue,
		configImportFailedIssue.Id():    configImportFailedIssue,
		configResolveFailedIssue.Id():   configResolveFailedIssue,
		optionsLoadFailedIssue.Id():     optionsLoadFailedIssue,
		invalidLoaderIssue.Id():         invalidLoaderIssue,
		entityDiscoveryFailedIssue.Id(): entityDiscoveryFailedIssue,
	}
)

// Values returns every registered issue, ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id - b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
