package viewmodel

import (
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/template/html/v2"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/internal/pkg/address"
	"github.com/bewear-pt/storefront/internal/pkg/money"
)

// NewEngine creates the html template engine with the storefront helpers.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(template.FuncMap{
		"eur": money.FormatEUR,
		"lineTotal": func(unit int64, qty int) string {
			return money.FormatEUR(money.LineTotal(unit, qty))
		},
		"formatAddress": func(a models.ShippingAddress) string {
			return address.Format(a)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"dict": dict,
	})
	return engine
}

// dict builds a map from key/value pairs so partials can take several arguments.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
