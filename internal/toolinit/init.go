package toolinit

import (
	"github.com/nachoal/parts-agent-go/tools"
	"github.com/nachoal/parts-agent-go/tools/registry"
)

// RegisterAll registers all built-in functions on r
func RegisterAll(r *registry.Registry) error {
	factories := map[string]registry.ToolFactory{
		// Data collection
		tools.NameSaveInfo:        tools.NewSaveInfoTool,
		tools.NameSaveClientInfo:  tools.NewSaveClientInfoTool,
		tools.NameSaveVehicleInfo: tools.NewSaveVehicleInfoTool,
		tools.NameSaveField:       tools.NewLegacyFieldTool,

		// Validation and flow
		tools.NameValidateVehicle: tools.NewValidateVehicleTool,
		tools.NameNextStep:        tools.NewNextStepTool,

		// Quoting
		tools.NameGenerateQuote: tools.NewQuoteTool,
	}

	for name, factory := range factories {
		if err := r.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with every built-in function registered
func NewRegistry() *registry.Registry {
	r := registry.New()
	// names are unique constants, so registration cannot collide
	_ = RegisterAll(r)
	return r
}
