package github

import (
	"path"
	"strings"
)

// manifestNames maps lower-cased base names of dependency manifests and CI
// files to the language reported for them.
var manifestNames = map[string]string{
	"package.json":       "JSON",
	"go.mod":             "Go Module",
	"requirements.txt":   "Text",
	"pyproject.toml":     "TOML",
	"cargo.toml":         "TOML",
	"pom.xml":            "XML",
	"build.gradle":       "Gradle",
	"dockerfile":         "Dockerfile",
	"docker-compose.yml": "YAML",
	"makefile":           "Makefile",
}

var sourceLanguages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".rs":    "Rust",
	".c":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".cs":    "C#",
	".rb":    "Ruby",
	".php":   "PHP",
	".swift": "Swift",
	".scala": "Scala",
}

const workflowDir = ".github/workflows/"

func isManifest(p string) bool {
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, workflowDir) {
		ext := path.Ext(lower)
		return ext == ".yml" || ext == ".yaml"
	}
	_, ok := manifestNames[path.Base(lower)]
	return ok
}

func isSource(p string) bool {
	_, ok := sourceLanguages[strings.ToLower(path.Ext(p))]
	return ok
}

// SelectKeyFiles picks the files whose content is sampled into a snapshot.
// Manifests and CI workflows win; without any, the first source files are
// used instead.
func SelectKeyFiles(paths []string) []string {
	var picked []string
	for _, p := range paths {
		if len(picked) == maxSnippets {
			return picked
		}
		if isManifest(p) {
			picked = append(picked, p)
		}
	}
	if len(picked) > 0 {
		return picked
	}

	for _, p := range paths {
		if len(picked) == maxSourceFallback {
			break
		}
		if isSource(p) {
			picked = append(picked, p)
		}
	}
	return picked
}

// LanguageFor names the language of a file from its base name or extension.
func LanguageFor(p string) string {
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, workflowDir) {
		return "YAML"
	}
	if lang, ok := manifestNames[path.Base(lower)]; ok {
		return lang
	}
	if lang, ok := sourceLanguages[path.Ext(lower)]; ok {
		return lang
	}
	return "Text"
}
