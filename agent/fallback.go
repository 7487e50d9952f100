package agent

import (
	"strings"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools"
)

// fallbackReply is the templated reply used when the reply stage fails.
// Templates are keyed by function name.
func fallbackReply(name string, res tools.Result, s *session.Session) string {
	question := NextQuestion(expectedStatus(s))

	switch name {
	case tools.NameSaveInfo, tools.NameSaveClientInfo, tools.NameSaveVehicleInfo, tools.NameSaveField:
		if !res.Success {
			if res.Data != nil && len(res.Data.Issues) > 0 {
				return "No pude guardar algunos datos (" + strings.Join(res.Data.Issues, "; ") + "). ¿Podrías repetirlos?"
			}
			return "No logré entender los datos. ¿Podrías repetirlo, por favor?"
		}
		greeting := "¡Perfecto, ya lo tengo registrado!"
		if s.ClientInfo.Name != "" {
			greeting = "¡Perfecto, " + firstName(s.ClientInfo.Name) + ", ya lo tengo registrado!"
		}
		return greeting + " " + question

	case tools.NameValidateVehicle:
		if !res.Success {
			issues := ""
			if res.Data != nil {
				issues = strings.Join(res.Data.Issues, "; ")
			}
			return "Parece que hay un problema con los datos del vehículo: " + issues + ". ¿Podrías confirmarlos?"
		}
		return "Los datos de tu vehículo son correctos. " + question

	case tools.NameGenerateQuote:
		if res.Success && res.Data != nil && res.Data.Quote != nil {
			return res.Data.Quote.Summary() + "\n\n¿Deseas que procedamos con tu pedido?"
		}
		return "Para generar tu cotización aún necesito algunos datos. " + question

	case tools.NameNextStep:
		return question
	}

	return genericReply
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
