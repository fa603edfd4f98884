package models

// Factor keys reported in RiskResult.Factors
const (
	FactorSimilarityToQuality = "similarity_to_quality"
	FactorSimilarityToRisky   = "similarity_to_risky"
	FactorSimilarityToTeam    = "similarity_to_team"
	FactorSizeRatio           = "size_ratio"
	FactorFilesRatio          = "files_ratio"
	FactorTitleRatio          = "title_ratio"
	FactorSizePenalty         = "size_penalty"
	FactorFilesPenalty        = "files_penalty"
	FactorTitlePenalty        = "title_penalty"
	FactorSizeTerm            = "size_term"
	FactorFilesTerm           = "files_term"
	FactorSensitiveFiles      = "sensitive_files"
	FactorShortTitle          = "short_title"
	FactorShortDescription    = "short_description"
)

// RiskLevel buckets a risk score for display
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Match is one piece of evidence: a corpus document similar to the scored PR
type Match struct {
	SourceID     string  `json:"source_id"`
	Title        string  `json:"title,omitempty"`
	Similarity   float64 `json:"similarity"` // 0-1
	Origin       Origin  `json:"origin"`
	QualityLabel Label   `json:"quality_label"`
}

// RiskResult is the outcome of scoring one PR
type RiskResult struct {
	RiskScore      float64            `json:"risk_score"`
	RiskLevel      RiskLevel          `json:"risk_level"`
	Factors        map[string]float64 `json:"factors"`
	SimilarPRs     []Match            `json:"similar_prs"`
	ModelID        string             `json:"model_id"`
	CorpusSizeUsed int                `json:"corpus_size_used"`
	Benchmark      *BenchmarkStats    `json:"benchmark,omitempty"`
}

// CorpusSummary describes the current state of the corpus
type CorpusSummary struct {
	Initialized  bool            `json:"initialized"`
	QualityCount int             `json:"quality_count"`
	RiskyCount   int             `json:"risky_count"`
	TeamCount    int             `json:"team_count"`
	Benchmark    *BenchmarkStats `json:"benchmark,omitempty"`
	Unavailable  []string        `json:"unavailable,omitempty"`
}
