// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package webrtc

import (
	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/nack"
)

// RegisterDefaultInterceptors registers the interceptors this stack ships
// with by default into interceptorRegistry. If you want to customize which
// interceptors are loaded, copy this function and drop what you don't need.
func RegisterDefaultInterceptors(mediaEngine *MediaEngine, interceptorRegistry *interceptor.Registry) error {
	return ConfigureNack(mediaEngine, interceptorRegistry)
}

// ConfigureNack registers the feedback capability for NACK on the video
// codecs known to mediaEngine and adds the generator/responder interceptor
// pair to interceptorRegistry.
func ConfigureNack(mediaEngine *MediaEngine, interceptorRegistry *interceptor.Registry) error {
	mediaEngine.RegisterFeedback(RTCPFeedback{Type: "nack"}, RTPCodecTypeVideo)
	mediaEngine.RegisterFeedback(RTCPFeedback{Type: "nack", Parameter: "pli"}, RTPCodecTypeVideo)

	generator, err := nack.NewGeneratorInterceptor()
	if err != nil {
		return err
	}
	interceptorRegistry.Add(generator)

	responder, err := nack.NewResponderInterceptor()
	if err != nil {
		return err
	}
	interceptorRegistry.Add(responder)

	return nil
}
