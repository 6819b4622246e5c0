package curation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/errors"
)

const scriptExtension = ".tengo"

// LoadDir compiles every .tengo script in a directory into a page, named
// after its file. A script that does not compile is logged and skipped. A
// missing directory means no curated pages.
func LoadDir(dir string) ([]*Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(errors.ErrScriptLoad, "read %s: %v", dir, err)
	}

	var pages []*Page
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), scriptExtension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), scriptExtension)

		page, err := loadScript(name, path)
		if err != nil {
			logger.Warn("skipping curation script", logger.Fields{
				"page":  name,
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// loadScript compiles one script with the input variables pre-declared so
// per-run Set calls succeed.
func loadScript(name, path string) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrScriptLoad, "read %s: %v", path, err)
	}

	script := tengo.NewScript(content)
	script.SetImports(stdlib.GetModuleMap("fmt", "text", "math", "times"))

	_ = script.Add(varID, "")
	_ = script.Add(varName, "")
	_ = script.Add(varSummary, "")
	_ = script.Add(varKind, "")
	_ = script.Add(varCategories, []interface{}{})
	_ = script.Add(varDownloads, int64(0))
	_ = script.Add(varInstalled, false)

	compiled, err := script.Compile()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrScriptLoad, "compile %s: %v", path, err)
	}
	return &Page{Name: name, compiled: compiled}, nil
}
