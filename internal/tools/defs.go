package tools

import "sort"

// ToolDefinition describes an external command the pipeline shells out
// to, plus how to probe its version.
type ToolDefinition struct {
	Name           string
	Executable     string
	VersionArgs    []string
	MinimumVersion string

	// Purpose is shown in the check report.
	Purpose string
}

var toolDefinitions = map[string]ToolDefinition{
	"7z": {
		Name:       "7z",
		Executable: "7z",
		Purpose:    "unpack installers and update packages",
	},
	"node": {
		Name:           "node",
		Executable:     "node",
		VersionArgs:    []string{"--version"},
		MinimumVersion: "18.0.0",
		Purpose:        "run the asar archiver and native module build",
	},
	"npm": {
		Name:        "npm",
		Executable:  "npm",
		VersionArgs: []string{"--version"},
		Purpose:     "install Electron and build the native module",
	},
	"npx": {
		Name:       "npx",
		Executable: "npx",
		Purpose:    "invoke the asar archiver",
	},
	"dpkg-deb": {
		Name:        "dpkg-deb",
		Executable:  "dpkg-deb",
		VersionArgs: []string{"--version"},
		Purpose:     "build .deb packages",
	},
	"rpmbuild": {
		Name:        "rpmbuild",
		Executable:  "rpmbuild",
		VersionArgs: []string{"--version"},
		Purpose:     "build .rpm packages",
	},
	"convert": {
		Name:        "convert",
		Executable:  "convert",
		VersionArgs: []string{"-version"},
		Purpose:     "resize icons",
	},
	"wrestool": {
		Name:        "wrestool",
		Executable:  "wrestool",
		VersionArgs: []string{"--version"},
		Purpose:     "extract icons from Windows executables",
	},
	"icotool": {
		Name:        "icotool",
		Executable:  "icotool",
		VersionArgs: []string{"--version"},
		Purpose:     "convert .ico resources to PNG",
	},
	"icns2png": {
		Name:       "icns2png",
		Executable: "icns2png",
		Purpose:    "convert .icns resources to PNG",
	},
	"tar": {
		Name:       "tar",
		Executable: "tar",
		Purpose:    "stage RPM source tarballs",
	},
}

// KnownTools returns the list of managed tool names.
func KnownTools() []string {
	names := make([]string, 0, len(toolDefinitions))
	for name := range toolDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the tool definition for the provided name.
func Definition(name string) (ToolDefinition, bool) {
	def, ok := toolDefinitions[name]
	return def, ok
}
