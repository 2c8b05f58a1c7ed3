package curriculum

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// PlaygroundLanguages 练习场支持的语言，按展示顺序排列
var PlaygroundLanguages = []Language{HTML, CSS, JavaScript, Python}

//go:embed templates.yaml
var templatesYAML []byte

var (
	templatesOnce sync.Once
	templates     map[Language]string
	templatesErr  error
)

// Templates 练习场各语言的默认代码
func Templates() (map[Language]string, error) {
	templatesOnce.Do(func() {
		var parsed map[Language]string
		if err := yaml.Unmarshal(templatesYAML, &parsed); err != nil {
			templatesErr = fmt.Errorf("parse playground templates: %w", err)
			return
		}
		for _, lang := range PlaygroundLanguages {
			if parsed[lang] == "" {
				templatesErr = fmt.Errorf("missing playground template for %s", lang)
				return
			}
		}
		templates = parsed
	})
	return templates, templatesErr
}
