// +build !js

package webrtc

import (
	"testing"

	"github.com/pion/interceptor"
	"github.com/stretchr/testify/assert"
)

func TestConfigureNack_RegistersFeedbackAndInterceptors(t *testing.T) {
	m := &MediaEngine{}
	ir := &interceptor.Registry{}

	assert.NoError(t, ConfigureNack(m, ir))

	chain, err := ir.Build("")
	assert.NoError(t, err)
	assert.NotNil(t, chain)
	assert.NoError(t, chain.Close())
}

func TestNewAPI_BuildsDefaultInterceptorChain(t *testing.T) {
	a := NewAPI()
	assert.NotNil(t, a.interceptor)
}

func TestNewAPI_WithInterceptorRegistry(t *testing.T) {
	ir := &interceptor.Registry{}
	a := NewAPI(WithInterceptorRegistry(ir))
	assert.Same(t, ir, a.interceptorRegistry)
	assert.NotNil(t, a.interceptor)
}
