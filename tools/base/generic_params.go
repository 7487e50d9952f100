package base

// VehicleParams is the nested vehicle object accepted by every data function
type VehicleParams struct {
	Marca          string `json:"marca,omitempty" description:"Marca del vehículo, por ejemplo Toyota" schema:"min:2"`
	Modelo         string `json:"modelo,omitempty" description:"Modelo del vehículo, por ejemplo Corolla" schema:"min:1"`
	Anio           int    `json:"año,omitempty" description:"Año del vehículo" schema:"min:1990"`
	Litraje        string `json:"litraje,omitempty" description:"Litraje del motor, por ejemplo 1.6 o 2.0L"`
	NumeroSerie    string `json:"numeroSerie,omitempty" description:"Número de serie (VIN) del vehículo" schema:"min:5,max:20"`
	ModeloEspecial string `json:"modeloEspecial,omitempty" description:"Versión especial del modelo, por ejemplo GTI o Sport"`
}

// SaveParams accepts any subset of client and vehicle fields in one call.
// Vehicle fields may be sent flat or nested under vehiculo.
type SaveParams struct {
	Nombre         string         `json:"nombre,omitempty" description:"Nombre del cliente" schema:"min:2"`
	Pieza          string         `json:"pieza,omitempty" description:"Pieza o refacción que necesita el cliente" schema:"min:3"`
	Marca          string         `json:"marca,omitempty" description:"Marca del vehículo" schema:"min:2"`
	Modelo         string         `json:"modelo,omitempty" description:"Modelo del vehículo" schema:"min:1"`
	Anio           int            `json:"año,omitempty" description:"Año del vehículo" schema:"min:1990"`
	Litraje        string         `json:"litraje,omitempty" description:"Litraje del motor"`
	NumeroSerie    string         `json:"numeroSerie,omitempty" description:"Número de serie (VIN)" schema:"min:5,max:20"`
	ModeloEspecial string         `json:"modeloEspecial,omitempty" description:"Versión especial del modelo"`
	Vehiculo       *VehicleParams `json:"vehiculo,omitempty" description:"Datos del vehículo agrupados"`
}

// LegacyParams is the single field/value shape older prompts still emit
type LegacyParams struct {
	Campo string `json:"campo" schema:"required,enum:nombre|pieza|marca|modelo|año|litraje|numeroSerie|modeloEspecial" description:"Campo a guardar"`
	Valor string `json:"valor" schema:"required" description:"Valor del campo"`
}

// VehicleCheckParams requires a vehicle with brand, model and year
type VehicleCheckParams struct {
	Vehiculo VehicleCheck `json:"vehiculo" description:"Vehículo a validar"`
}

// VehicleCheck is the vehicle shape validated by validar_datos_vehiculo
type VehicleCheck struct {
	Marca   string `json:"marca" description:"Marca del vehículo"`
	Modelo  string `json:"modelo" description:"Modelo del vehículo"`
	Anio    int    `json:"año" description:"Año del vehículo" schema:"min:1990"`
	Litraje string `json:"litraje,omitempty" description:"Litraje del motor"`
}

// ClientInfoParams wraps the collected record for quote and next-step functions
type ClientInfoParams struct {
	ClientInfo ClientInfoArg `json:"clientInfo" description:"Información recopilada del cliente"`
}

// ClientInfoArg mirrors the stored client record
type ClientInfoArg struct {
	Nombre         string         `json:"nombre,omitempty" description:"Nombre del cliente"`
	PiezaNecesaria string         `json:"piezaNecesaria,omitempty" description:"Pieza que necesita"`
	Vehiculo       *VehicleParams `json:"vehiculo,omitempty" description:"Datos del vehículo"`
}
