package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools"
)

const defaultWelcomeMessage = "¡Hola! 👋 Soy tu asistente de refacciones. Cuéntame qué pieza necesitas y para qué vehículo, y te preparo una cotización."

const defaultSystemPrompt = `Eres un asistente de ventas de refacciones automotrices que atiende clientes por WhatsApp.
Tu objetivo es recopilar los datos necesarios para cotizar una pieza: nombre del cliente, pieza necesaria, marca, modelo, año, litraje y número de serie del vehículo.

Reglas:
1. Responde siempre en español, de forma breve y amable.
2. Cuando el cliente proporcione datos, llama a guardar_informacion con TODOS los datos detectados en un solo llamado.
3. Pide un solo dato a la vez, siguiendo el orden indicado en "Siguiente dato".
4. No inventes datos ni precios. Usa generar_cotizacion cuando ya tengas la pieza y el vehículo.
5. Si un dato no es válido, explica el problema y pídelo de nuevo.`

const (
	apologyMessage = "Lo siento, tuve un problema procesando tu mensaje. ¿Podrías intentarlo de nuevo?"
	genericReply   = "Disculpa, no pude procesar tu mensaje. ¿Podrías repetirlo?"
)

var statusQuestions = map[session.Status]string{
	session.StatusGreeting:          "¿En qué pieza te puedo ayudar hoy?",
	session.StatusCollectingName:    "¿Me podrías decir tu nombre?",
	session.StatusCollectingPart:    "¿Qué pieza necesitas?",
	session.StatusCollectingBrand:   "¿De qué marca es tu vehículo?",
	session.StatusCollectingModel:   "¿Qué modelo es tu vehículo?",
	session.StatusCollectingYear:    "¿De qué año es tu vehículo?",
	session.StatusCollectingEngine:  "¿Qué litraje tiene el motor? (por ejemplo 1.6 o 2.0)",
	session.StatusCollectingSerial:  "¿Me compartes el número de serie (VIN) de tu vehículo?",
	session.StatusCollectingSpecial: "¿Tu vehículo es alguna versión especial? (por ejemplo GTI o Sport)",
	session.StatusDataComplete:      "¡Gracias! Ya tengo todos los datos, en breve te preparo la cotización.",
	session.StatusGeneratingQuote:   "Estoy preparando tu cotización.",
}

// NextQuestion returns the question that moves a conversation in status forward
func NextQuestion(status session.Status) string {
	if q, ok := statusQuestions[status]; ok {
		return q
	}
	return statusQuestions[session.StatusGreeting]
}

// buildSystemMessage renders the persona plus the current record and status
func buildSystemMessage(prompt string, s *session.Session) string {
	info, err := json.Marshal(s.ClientInfo)
	if err != nil {
		info = []byte("{}")
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nInformación actual del cliente: ")
	b.Write(info)
	fmt.Fprintf(&b, "\nEstado actual: %s", s.Status)
	if missing := session.Missing(s.ClientInfo); len(missing) > 0 {
		fmt.Fprintf(&b, "\nDatos faltantes: %s", strings.Join(missing, ", "))
	}
	fmt.Fprintf(&b, "\nSiguiente dato: %s", NextQuestion(expectedStatus(s)))
	return b.String()
}

// expectedStatus is the status to steer toward; greeting moves on to the
// first missing field.
func expectedStatus(s *session.Session) session.Status {
	if s.Status == session.StatusGreeting {
		return session.Derive(s.ClientInfo)
	}
	return s.Status
}

// buildResultNote is the internal note given to the reply stage after a
// function ran.
func buildResultNote(name string, res tools.Result, s *session.Session) string {
	payload, err := json.Marshal(res)
	if err != nil {
		payload = []byte(`{}`)
	}

	var b strings.Builder
	if res.Success {
		fmt.Fprintf(&b, "Información guardada. Resultado de %s: %s", name, payload)
	} else {
		fmt.Fprintf(&b, "La función %s no se completó: %s", name, payload)
	}
	fmt.Fprintf(&b, "\nEstado actual: %s", s.Status)
	fmt.Fprintf(&b, "\nResponde al cliente en español sin llamar funciones. Siguiente dato: %s", NextQuestion(expectedStatus(s)))
	return b.String()
}
