// Package dto тела запросов и ответов HTTP API.
package dto

// PageRequest ограничение выборки.
type PageRequest struct {
	Limit int `query:"limit"`
}

// DefaultPage значения по умолчанию и верхняя граница.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
}

// ErrorResponse тело ошибки.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
