package domain

// CurriculumPreview is a read-only projection computed by the backend: the
// user's approved certificates arranged against one edict's rubric. The
// client holds no authority over its values.
type CurriculumPreview struct {
	EdictID        string           `json:"edict_id"`
	Sections       []PreviewSection `json:"sections"`
	EstimatedTotal float64          `json:"estimated_total"`
	MaxScore       float64          `json:"max_score"`
}

type PreviewSection struct {
	CategorySlug   string   `json:"category_slug"`
	Priority       int      `json:"priority"`
	EstimatedScore float64  `json:"estimated_score"`
	MaxScore       float64  `json:"max_score,omitempty"`
	SampleItems    []string `json:"sample_items,omitempty"`
}

// ParsedEdictSummary echoes what the backend extracted from an uploaded
// edict PDF. Field tags follow the ingestion API's wire names.
type ParsedEdictSummary struct {
	EdictID       string       `json:"edict_id"`
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	ParsedData    *ParsedEdict `json:"parsed_data,omitempty"`
	CriteriaCount int          `json:"num_criterios"`
	Programs      []string     `json:"programas,omitempty"`
	Departments   []string     `json:"departamentos,omitempty"`
}

type ParsedEdict struct {
	Name        string `json:"nome_edital"`
	Institution string `json:"instituicao"`
	Year        int    `json:"ano,omitempty"`
}
