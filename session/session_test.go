package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	full := ClientInfo{
		Name: "Juan",
		Part: "pastillas de freno",
		Vehicle: &VehicleInfo{
			Brand:  "Toyota",
			Model:  "Corolla",
			Year:   2018,
			Engine: "1.8L",
			Serial: "JTDBR32E720123456",
		},
	}

	tests := []struct {
		name string
		info ClientInfo
		want Status
	}{
		{"empty", ClientInfo{}, StatusCollectingName},
		{"only name", ClientInfo{Name: "Juan"}, StatusCollectingPart},
		{"name and part", ClientInfo{Name: "Juan", Part: "filtro"}, StatusCollectingBrand},
		{"missing name only", ClientInfo{Part: "filtro", Vehicle: full.Vehicle}, StatusCollectingName},
		{"missing serial", ClientInfo{Name: "Juan", Part: "filtro", Vehicle: &VehicleInfo{Brand: "Ford", Model: "Focus", Year: 2015, Engine: "2.0L"}}, StatusCollectingSerial},
		{"all seven", full, StatusDataComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.info))
		})
	}
}

func TestDerive_IgnoresSpecialVariant(t *testing.T) {
	info := ClientInfo{Name: "Ana", Vehicle: &VehicleInfo{SpecialVariant: "GTI"}}
	assert.Equal(t, StatusCollectingPart, Derive(info))
}

func TestMerge_NeverClearsSetFields(t *testing.T) {
	base := ClientInfo{Name: "Juan", Vehicle: &VehicleInfo{Brand: "Toyota", Year: 2018}}
	merged := Merge(base, ClientInfo{Part: "alternador", Vehicle: &VehicleInfo{Model: "Corolla"}})

	assert.Equal(t, "Juan", merged.Name)
	assert.Equal(t, "alternador", merged.Part)
	require.NotNil(t, merged.Vehicle)
	assert.Equal(t, "Toyota", merged.Vehicle.Brand)
	assert.Equal(t, "Corolla", merged.Vehicle.Model)
	assert.Equal(t, 2018, merged.Vehicle.Year)

	merged = Merge(merged, ClientInfo{})
	assert.Equal(t, "Juan", merged.Name)
	assert.Equal(t, "Corolla", merged.Vehicle.Model)
}

func TestMerge_OverwritesWithNonEmpty(t *testing.T) {
	merged := Merge(ClientInfo{Name: "Juan"}, ClientInfo{Name: "Juan Pérez"})
	assert.Equal(t, "Juan Pérez", merged.Name)
}

func TestMerge_DoesNotAliasBase(t *testing.T) {
	base := ClientInfo{Vehicle: &VehicleInfo{Brand: "Ford"}}
	merged := Merge(base, ClientInfo{Vehicle: &VehicleInfo{Model: "Focus"}})

	assert.Empty(t, base.Vehicle.Model)
	assert.Equal(t, "Focus", merged.Vehicle.Model)
}

func TestMerge_CommutativeOverDisjointFields(t *testing.T) {
	updates := []ClientInfo{
		{Name: "Juan"},
		{Part: "pastillas de freno"},
		{Vehicle: &VehicleInfo{Brand: "Toyota"}},
		{Vehicle: &VehicleInfo{Model: "Corolla", Year: 2018}},
		{Vehicle: &VehicleInfo{Engine: "1.8L"}},
	}

	forward := ClientInfo{}
	for _, u := range updates {
		forward = Merge(forward, u)
	}
	backward := ClientInfo{}
	for i := len(updates) - 1; i >= 0; i-- {
		backward = Merge(backward, updates[i])
	}

	assert.Equal(t, forward, backward)
}

func TestNew_SeedsWelcome(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := New("whatsapp-521", "521", "¡Hola!", now)

	assert.Equal(t, StatusGreeting, s.Status)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleAssistant, s.Messages[0].Role)
	assert.Equal(t, "¡Hola!", s.Messages[0].Content)
	assert.NotEmpty(t, s.Messages[0].ID)
	assert.Equal(t, now, s.LastActivity)
}

func TestSession_RecentAndClone(t *testing.T) {
	now := time.Now()
	s := New("c", "u", "", now)
	for i := 0; i < 10; i++ {
		s.Append(NewMessage(RoleUser, "m", now.Add(time.Duration(i)*time.Second)))
	}

	assert.Len(t, s.Recent(8), 8)
	assert.Len(t, s.Recent(0), 10)
	assert.Equal(t, now.Add(9*time.Second), s.LastActivity)

	c := s.Clone()
	c.Messages[0].Content = "changed"
	assert.Equal(t, "m", s.Messages[0].Content)
}

func TestMissing(t *testing.T) {
	missing := Missing(ClientInfo{Name: "Juan", Vehicle: &VehicleInfo{Brand: "VW"}})
	assert.Equal(t, []string{FieldPart, FieldModel, FieldYear, FieldEngine, FieldSerial}, missing)
}
