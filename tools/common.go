package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nachoal/parts-agent-go/internal/normalize"
	"github.com/nachoal/parts-agent-go/internal/validator"
	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
)

// MinYear is the oldest vehicle year accepted
const MinYear = 1990

// MaxYear is the newest vehicle year accepted at now
func MaxYear(now time.Time) int {
	return now.Year() + 1
}

// fieldAliases maps alternative argument keys to canonical field names
var fieldAliases = map[string]string{
	"nombre":          session.FieldName,
	"name":            session.FieldName,
	"pieza":           session.FieldPart,
	"piezaNecesaria":  session.FieldPart,
	"pieza_necesaria": session.FieldPart,
	"marca":           session.FieldBrand,
	"modelo":          session.FieldModel,
	"año":             session.FieldYear,
	"ano":             session.FieldYear,
	"anio":            session.FieldYear,
	"litraje":         session.FieldEngine,
	"motor":           session.FieldEngine,
	"numeroSerie":     session.FieldSerial,
	"numero_serie":    session.FieldSerial,
	"vin":             session.FieldSerial,
	"modeloEspecial":  session.FieldSpecial,
	"modelo_especial": session.FieldSpecial,
}

// CanonicalField resolves an argument key to a known field name
func CanonicalField(key string) (string, bool) {
	f, ok := fieldAliases[strings.TrimSpace(key)]
	return f, ok
}

// collectFields gathers submitted field values from every shape the model
// uses: clientInfo{...}, vehiculo{...}, flat keys and a campo/valor pair.
// Later shapes override earlier ones.
func collectFields(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})

	var add func(m map[string]interface{})
	add = func(m map[string]interface{}) {
		for k, v := range m {
			if nested, ok := v.(map[string]interface{}); ok && (k == "vehiculo" || k == "clientInfo") {
				add(nested)
				continue
			}
			if f, ok := CanonicalField(k); ok {
				out[f] = v
			}
		}
	}

	if ci, ok := args["clientInfo"].(map[string]interface{}); ok {
		add(ci)
	}
	if v, ok := args["vehiculo"].(map[string]interface{}); ok {
		add(v)
	}
	for k, v := range args {
		if _, nested := v.(map[string]interface{}); nested {
			continue
		}
		if f, ok := CanonicalField(k); ok {
			out[f] = v
		}
	}
	if campo, ok := stringArg(args["campo"]); ok {
		if f, ok := CanonicalField(campo); ok {
			out[f] = args["valor"]
		}
	}
	return out
}

// ExtractClientInfo coerces, validates and normalizes every submitted field
// independently. Rejected fields are left out of the returned update and
// reported in the outcome list.
func ExtractClientInfo(args map[string]interface{}, now time.Time) (session.ClientInfo, []FieldOutcome) {
	return extractFields(collectFields(args), now)
}

func extractFields(fields map[string]interface{}, now time.Time) (session.ClientInfo, []FieldOutcome) {
	var (
		params   base.SaveParams
		outcomes []FieldOutcome
		strs     = make(map[string]string)
		year     int
		yearSet  bool
	)

	reject := func(field string, value interface{}, reason string) {
		outcomes = append(outcomes, FieldOutcome{Field: field, Value: value, Reason: reason})
	}

	for _, f := range session.KnownFields {
		raw, ok := fields[f]
		if !ok || raw == nil {
			continue
		}
		if f == session.FieldYear {
			if str, isStr := raw.(string); isStr && strings.TrimSpace(str) == "" {
				continue
			}
			y, ok := intArg(raw)
			if !ok {
				reject(f, raw, "el año debe ser un número")
				continue
			}
			year, yearSet = y, true
			params.Anio = y
			continue
		}
		s, ok := stringArg(raw)
		if ok && !numericFields[f] {
			_, ok = raw.(string)
		}
		if !ok {
			reject(f, raw, "tipo de dato inválido")
			continue
		}
		if s == "" {
			// empty values never clear collected data
			continue
		}
		strs[f] = s
	}

	params.Nombre = strs[session.FieldName]
	params.Pieza = strs[session.FieldPart]
	params.Marca = strs[session.FieldBrand]
	params.Modelo = strs[session.FieldModel]
	params.Litraje = strs[session.FieldEngine]
	params.NumeroSerie = strs[session.FieldSerial]
	params.ModeloEspecial = strs[session.FieldSpecial]

	invalid := make(map[string]string)
	if errs, err := validator.ValidateFields(&params); err == nil {
		for _, fe := range errs {
			invalid[fe.Field] = fe.Message
		}
	}

	var (
		info    session.ClientInfo
		vehicle session.VehicleInfo
	)
	accept := func(field string, value interface{}) {
		outcomes = append(outcomes, FieldOutcome{Field: field, Value: value, Accepted: true})
	}

	for _, f := range session.KnownFields {
		if f == session.FieldYear {
			if !yearSet {
				continue
			}
			if year < MinYear || year > MaxYear(now) {
				reject(f, year, fmt.Sprintf("el año debe estar entre %d y %d", MinYear, MaxYear(now)))
				continue
			}
			vehicle.Year = year
			accept(f, year)
			continue
		}

		s, ok := strs[f]
		if !ok {
			continue
		}
		if msg, bad := invalid[f]; bad {
			reject(f, s, msg)
			continue
		}

		switch f {
		case session.FieldName:
			info.Name = s
		case session.FieldPart:
			info.Part = s
		case session.FieldBrand:
			s = normalize.Brand(s)
			vehicle.Brand = s
		case session.FieldModel:
			vehicle.Model = s
		case session.FieldEngine:
			engine, ok := normalize.EngineSize(s)
			if !ok {
				reject(f, s, "litraje no reconocido, usa un formato como 1.6 o 2.0L")
				continue
			}
			s = engine
			vehicle.Engine = engine
		case session.FieldSerial:
			s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
			vehicle.Serial = s
		case session.FieldSpecial:
			vehicle.SpecialVariant = s
		}
		accept(f, s)
	}

	if vehicle != (session.VehicleInfo{}) {
		info.Vehicle = &vehicle
	}
	return info, outcomes
}

// AcceptedFields lists the fields applied from outcomes
func AcceptedFields(outcomes []FieldOutcome) []string {
	var names []string
	for _, o := range outcomes {
		if o.Accepted {
			names = append(names, o.Field)
		}
	}
	return names
}

// RejectedFields lists "field: reason" for every dropped field
func RejectedFields(outcomes []FieldOutcome) []string {
	var out []string
	for _, o := range outcomes {
		if !o.Accepted {
			out = append(out, o.Field+": "+o.Reason)
		}
	}
	return out
}

// numericFields may arrive as JSON numbers ("modelo": 3, "litraje": 1.6)
var numericFields = map[string]bool{
	session.FieldModel:  true,
	session.FieldEngine: true,
	session.FieldSerial: true,
}

// stringArg coerces scalar JSON values to a trimmed string
func stringArg(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.Join(strings.Fields(t), " "), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}

// intArg coerces whole numbers sent as numbers or numeric strings
func intArg(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
