// internal/service/template_service.go
package service

import (
	"strings"

	"github.com/unclebandit/zapleopard-backend/internal/model"
)

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = replace(result, "{"+k+"}", v)
	}
	return result
}

func replace(template, placeholder, value string) string {
	if value == "" {
		value = "<unknown>"
	}
	return strings.ReplaceAll(template, placeholder, value)
}

// RecipientData builds the placeholder map for one recipient.
func RecipientData(rcpt *model.Recipient) map[string]string {
	return map[string]string{
		"nome":     rcpt.Name,
		"telefone": rcpt.Phone,
	}
}
