package domain

import "context"

type ImportRequest struct {
	Country          string  `json:"country"`
	IssueYear        int     `json:"issue_year"`
	Denomination     float64 `json:"denomination"`
	DenominationText string  `json:"denomination_text"`
	Rarity           string  `json:"rarity"`
	Condition        string  `json:"condition"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image_url"`
}

type Service interface {
	Import(ctx context.Context, req ImportRequest) (*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, req ListRequest) ([]Item, error)
}
