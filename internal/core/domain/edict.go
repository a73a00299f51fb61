package domain

import (
	"sort"
	"strconv"
	"time"
)

type EdictStatus string

const (
	EdictDraft     EdictStatus = "draft"
	EdictPublished EdictStatus = "published"
)

type ConditionalPoints struct {
	Trigger          string  `json:"trigger"`
	AdditionalPoints float64 `json:"additional_points"`
	Description      string  `json:"description,omitempty"`
}

type Criterion struct {
	Program        string              `json:"program,omitempty"`
	Department     string              `json:"department,omitempty"`
	DisplayOrder   int                 `json:"display_order"`
	SubOrder       int                 `json:"sub_order,omitempty"`
	CategorySlug   string              `json:"category_slug"`
	Description    string              `json:"description"`
	UnitPoints     float64             `json:"unit_points"`
	Conditionals   []ConditionalPoints `json:"conditionals,omitempty"`
	ItemLimit      int                 `json:"item_limit,omitempty"`
	MaxPoints      float64             `json:"max_points,omitempty"`
	SearchKeywords []string            `json:"search_keywords,omitempty"`
}

type BaremaConfig struct {
	Criteria    []Criterion `json:"criteria"`
	Programs    []string    `json:"programs,omitempty"`
	Departments []string    `json:"departments,omitempty"`
	Year        int         `json:"year,omitempty"`
	Footnotes   []string    `json:"footnotes,omitempty"`
}

type Edict struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Institution  string       `json:"institution"`
	State        string       `json:"state,omitempty"`
	City         string       `json:"city,omitempty"`
	Status       EdictStatus  `json:"status"`
	Year         int          `json:"year,omitempty"`
	Programs     []string     `json:"programs,omitempty"`
	Departments  []string     `json:"departments,omitempty"`
	BaremaConfig BaremaConfig `json:"barema_config"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
	PublishedAt  *time.Time   `json:"published_at,omitempty"`
}

// CategoryNames maps the backend category slugs to their display labels.
var CategoryNames = map[string]string{
	"formacao_academica":       "Formação Acadêmica",
	"titulos_certificados":     "Títulos e Certificados",
	"atividades_academicas":    "Atividades Acadêmicas",
	"publicacoes":              "Publicações",
	"premios_distincoes":       "Prêmios e Distinções",
	"experiencia_profissional": "Experiência Profissional",
	"atividades_extensao":      "Atividades de Extensão",
	"idiomas":                  "Idiomas",
	"outros":                   "Outros",
}

func CategoryLabel(slug string) string {
	if name, ok := CategoryNames[slug]; ok {
		return name
	}
	return slug
}

type CriterionGroup struct {
	CategorySlug string
	Criteria     []Criterion
}

// GroupCriteria partitions criteria by category, keeping categories in
// first-appearance order. Within a category the criteria are sorted by
// (display_order, sub_order) ascending, with a missing sub_order treated
// as 0; the sort is stable so equal keys keep their input order.
func GroupCriteria(criteria []Criterion) []CriterionGroup {
	var groups []CriterionGroup
	index := make(map[string]int)

	for _, criterion := range criteria {
		pos, ok := index[criterion.CategorySlug]
		if !ok {
			pos = len(groups)
			index[criterion.CategorySlug] = pos
			groups = append(groups, CriterionGroup{CategorySlug: criterion.CategorySlug})
		}
		groups[pos].Criteria = append(groups[pos].Criteria, criterion)
	}

	for i := range groups {
		criteria := groups[i].Criteria
		sort.SliceStable(criteria, func(a, b int) bool {
			if criteria[a].DisplayOrder != criteria[b].DisplayOrder {
				return criteria[a].DisplayOrder < criteria[b].DisplayOrder
			}
			return criteria[a].SubOrder < criteria[b].SubOrder
		})
	}
	return groups
}

// EdictFilters is the ad-hoc search parameter set; empty fields are omitted
// from the request entirely.
type EdictFilters struct {
	Institution string
	Year        int
	State       string
	Program     string
	Department  string
}

func (f EdictFilters) Empty() bool {
	return f == EdictFilters{}
}

// QueryParams renders only the non-empty filters.
func (f EdictFilters) QueryParams() map[string]string {
	params := make(map[string]string)
	if f.Institution != "" {
		params["institution"] = f.Institution
	}
	if f.Year != 0 {
		params["year"] = strconv.Itoa(f.Year)
	}
	if f.State != "" {
		params["state"] = f.State
	}
	if f.Program != "" {
		params["program"] = f.Program
	}
	if f.Department != "" {
		params["department"] = f.Department
	}
	return params
}
