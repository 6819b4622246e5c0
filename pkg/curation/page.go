// Package curation runs operator-supplied Tengo scripts as curated result
// pages. A script sees one application per run and decides acceptance and
// rank; script failures exclude the app and are logged, never fatal.
package curation

import (
	"math"

	"github.com/d5/tengo/v2"
	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/search"
)

// Page is one compiled curation script.
type Page struct {
	Name     string
	compiled *tengo.Compiled
}

// script input/output variable names.
const (
	varID         = "id"
	varName       = "name"
	varSummary    = "summary"
	varKind       = "kind"
	varCategories = "categories"
	varDownloads  = "downloads"
	varInstalled  = "installed"
	varAccept     = "accept"
	varWeight     = "weight"
)

// Score adapts the page script to the search engine's scoring contract. The
// script reads the per-app input variables and sets `accept` (bool) and
// optionally `weight` (int, lower ranks first); `weight` defaults to 0 and
// popularity breaks ties. The compiled script is cloned per call, so the
// returned function is safe for the engine's parallel fan-out.
func (p *Page) Score() search.ScoreFunc {
	return func(id appid.AppId, info *model.AppInfo, installed bool) (search.Weight, bool) {
		run := p.compiled.Clone()

		categories := make([]interface{}, len(info.Categories))
		for i, category := range info.Categories {
			categories[i] = category
		}

		_ = run.Set(varID, id.String())
		_ = run.Set(varName, info.Name)
		_ = run.Set(varSummary, info.Summary)
		_ = run.Set(varKind, string(info.Kind))
		_ = run.Set(varCategories, categories)
		_ = run.Set(varDownloads, downloadsInt(info.MonthlyDownloads))
		_ = run.Set(varInstalled, installed)

		if err := run.Run(); err != nil {
			logger.Warn("curation script failed", logger.Fields{
				"page":  p.Name,
				"id":    id.String(),
				"error": err.Error(),
			})
			return search.Weight{}, false
		}

		if !run.Get(varAccept).Bool() {
			return search.Weight{}, false
		}
		return search.Weight{
			Primary:   run.Get(varWeight).Int64(),
			Secondary: -downloadsInt(info.MonthlyDownloads),
		}, true
	}
}

func downloadsInt(downloads uint64) int64 {
	if downloads > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(downloads)
}
