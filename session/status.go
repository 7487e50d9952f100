package session

// Field names as they appear in function arguments
const (
	FieldName    = "nombre"
	FieldPart    = "pieza"
	FieldBrand   = "marca"
	FieldModel   = "modelo"
	FieldYear    = "año"
	FieldEngine  = "litraje"
	FieldSerial  = "numeroSerie"
	FieldSpecial = "modeloEspecial"
)

// RequiredFields is the fixed priority order used to derive the status
var RequiredFields = []string{
	FieldName,
	FieldPart,
	FieldBrand,
	FieldModel,
	FieldYear,
	FieldEngine,
	FieldSerial,
}

// KnownFields is every field a save function accepts
var KnownFields = append(append([]string{}, RequiredFields...), FieldSpecial)

var collectingStatus = map[string]Status{
	FieldName:    StatusCollectingName,
	FieldPart:    StatusCollectingPart,
	FieldBrand:   StatusCollectingBrand,
	FieldModel:   StatusCollectingModel,
	FieldYear:    StatusCollectingYear,
	FieldEngine:  StatusCollectingEngine,
	FieldSerial:  StatusCollectingSerial,
	FieldSpecial: StatusCollectingSpecial,
}

// Has reports whether field is set on info
func (c ClientInfo) Has(field string) bool {
	v := c.Vehicle
	switch field {
	case FieldName:
		return c.Name != ""
	case FieldPart:
		return c.Part != ""
	case FieldBrand:
		return v != nil && v.Brand != ""
	case FieldModel:
		return v != nil && v.Model != ""
	case FieldYear:
		return v != nil && v.Year != 0
	case FieldEngine:
		return v != nil && v.Engine != ""
	case FieldSerial:
		return v != nil && v.Serial != ""
	case FieldSpecial:
		return v != nil && v.SpecialVariant != ""
	}
	return false
}

// Missing returns the required fields not yet collected, in priority order
func Missing(info ClientInfo) []string {
	var missing []string
	for _, f := range RequiredFields {
		if !info.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Derive computes the status from which required fields are present
func Derive(info ClientInfo) Status {
	for _, f := range RequiredFields {
		if !info.Has(f) {
			return collectingStatus[f]
		}
	}
	return StatusDataComplete
}

// CollectingStatus returns the collecting_<field> status for field
func CollectingStatus(field string) (Status, bool) {
	s, ok := collectingStatus[field]
	return s, ok
}

// Merge applies update over base. Zero values in update never clear a field
// already set in base.
func Merge(base, update ClientInfo) ClientInfo {
	out := base.Clone()
	if update.Name != "" {
		out.Name = update.Name
	}
	if update.Part != "" {
		out.Part = update.Part
	}
	if u := update.Vehicle; u != nil {
		if out.Vehicle == nil {
			out.Vehicle = &VehicleInfo{}
		}
		v := out.Vehicle
		if u.Brand != "" {
			v.Brand = u.Brand
		}
		if u.Model != "" {
			v.Model = u.Model
		}
		if u.Year != 0 {
			v.Year = u.Year
		}
		if u.Engine != "" {
			v.Engine = u.Engine
		}
		if u.Serial != "" {
			v.Serial = u.Serial
		}
		if u.SpecialVariant != "" {
			v.SpecialVariant = u.SpecialVariant
		}
	}
	return out
}
