package aftereffects

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// ExtendScript run inside After Effects. Paths are normalised to forward
// slashes and emitted as JSON string literals, which ExtendScript accepts.
// Names are written in project item order; the project is closed without
// saving so listing never touches the user's file.
const listCompsTemplate = `var f = new File({{ .Project | replace "\\" "/" | toJson }});
app.open(f);
var comps = [];
for (var i = 1; i <= app.project.items.length; i++) {
    if (app.project.items[i] instanceof CompItem) {
        comps.push(app.project.items[i].name);
    }
}
var outputFile = new File({{ .Output | replace "\\" "/" | toJson }});
outputFile.encoding = "UTF-8";
outputFile.open("w");
outputFile.write(comps.join("\n"));
outputFile.close();
app.project.close(CloseOptions.DO_NOT_SAVE_CHANGES);
`

var listCompsScript = template.Must(
	template.New("list_comps.jsx").Funcs(sprig.TxtFuncMap()).Parse(listCompsTemplate),
)

// ScriptParams are the inputs of the listing script.
type ScriptParams struct {
	// Project is the .aep file to open.
	Project string
	// Output is where the script writes the newline-joined names.
	Output string
}

// ListCompsScript renders the ExtendScript that writes the composition names
// of p.Project to p.Output.
func ListCompsScript(p ScriptParams) (string, error) {
	var b strings.Builder
	if err := listCompsScript.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render listing script: %w", err)
	}
	return b.String(), nil
}
