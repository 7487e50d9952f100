package tools

import (
	"github.com/nachoal/parts-agent-go/tools/base"
)

// Function names exposed to the model
const (
	NameSaveInfo        = "guardar_informacion"
	NameSaveClientInfo  = "guardar_info_cliente"
	NameSaveVehicleInfo = "guardar_info_vehiculo"
	NameSaveField       = "guardar_campo"
	NameValidateVehicle = "validar_datos_vehiculo"
	NameGenerateQuote   = "generar_cotizacion"
	NameNextStep        = "determinar_proximo_paso"
)

// NewSaveInfoTool creates the batch save function
func NewSaveInfoTool() Tool {
	return &SaveInfoTool{
		BaseTool: base.BaseTool{
			ToolName: NameSaveInfo,
			ToolDesc: "Guarda toda la información que el cliente proporcione en un solo llamado: nombre, pieza y datos del vehículo (marca, modelo, año, litraje, numeroSerie, modeloEspecial). Envía todos los campos detectados juntos.",
		},
	}
}

// NewSaveClientInfoTool creates the client-focused save function
func NewSaveClientInfoTool() Tool {
	return &SaveInfoTool{
		BaseTool: base.BaseTool{
			ToolName: NameSaveClientInfo,
			ToolDesc: "Guarda datos del cliente (nombre y pieza necesaria). También acepta datos del vehículo si vienen en el mismo mensaje.",
		},
	}
}

// NewSaveVehicleInfoTool creates the vehicle-focused save function
func NewSaveVehicleInfoTool() Tool {
	return &SaveInfoTool{
		BaseTool: base.BaseTool{
			ToolName: NameSaveVehicleInfo,
			ToolDesc: "Guarda datos del vehículo (marca, modelo, año, litraje, numeroSerie, modeloEspecial). También acepta nombre y pieza.",
		},
	}
}

// NewLegacyFieldTool creates the single campo/valor save function
func NewLegacyFieldTool() Tool {
	return &LegacyFieldTool{
		BaseTool: base.BaseTool{
			ToolName: NameSaveField,
			ToolDesc: "Guarda un solo campo. Prefiere guardar_informacion cuando haya varios datos.",
		},
	}
}

// NewValidateVehicleTool creates the vehicle validation function
func NewValidateVehicleTool() Tool {
	return &ValidateVehicleTool{
		BaseTool: base.BaseTool{
			ToolName: NameValidateVehicle,
			ToolDesc: "Valida que los datos del vehículo (marca, modelo y año) sean correctos antes de cotizar.",
			ToolKind: base.KindCheck,
		},
	}
}

// NewQuoteTool creates the quote generation function
func NewQuoteTool() Tool {
	return &QuoteTool{
		BaseTool: base.BaseTool{
			ToolName: NameGenerateQuote,
			ToolDesc: "Genera una cotización de la pieza cuando ya se tienen la pieza necesaria y los datos del vehículo.",
			ToolKind: base.KindQuote,
		},
	}
}

// NewNextStepTool creates the next-step function
func NewNextStepTool() Tool {
	return &NextStepTool{
		BaseTool: base.BaseTool{
			ToolName: NameNextStep,
			ToolDesc: "Determina qué dato falta pedir al cliente según la información recopilada.",
			ToolKind: base.KindCheck,
		},
	}
}
