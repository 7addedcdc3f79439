package enumerate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint_Key(t *testing.T) {
	phys := Endpoint{ID: "{abc}.render"}
	assert.Equal(t, "{abc}.render", phys.Key())

	defRender := Endpoint{ID: "{xyz}", Flow: FlowRender, IsDefault: true}
	assert.Equal(t, "default-render", defRender.Key())

	defCapture := Endpoint{ID: "{xyz}", Flow: FlowCapture, IsDefault: true}
	assert.Equal(t, "default-capture", defCapture.Key())
}

func TestFormFactor_String(t *testing.T) {
	assert.Equal(t, "headphones", FormFactorHeadphones.String())
	assert.Equal(t, "unknown", FormFactor(999).String())
}
