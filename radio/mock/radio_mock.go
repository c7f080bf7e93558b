// Package mock is a hand-written gomock double for radio.Transmitter,
// kept in sync by hand since this module has no generate step wired to
// a build. Shape follows mockgen's usual output: a controller-backed
// mock plus a recorder for setting expectations.
//
//go:generate mockgen -source=../radio.go -destination=radio_mock.go -package=mock
package mock

import (
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/sdnwise/node"
)

// MockTransmitter mocks radio.Transmitter.
type MockTransmitter struct {
	ctrl     *gomock.Controller
	recorder *MockTransmitterMockRecorder
}

// MockTransmitterMockRecorder is the recorder for MockTransmitter.
type MockTransmitterMockRecorder struct {
	mock *MockTransmitter
}

// NewMockTransmitter builds a MockTransmitter controlled by ctrl.
func NewMockTransmitter(ctrl *gomock.Controller) *MockTransmitter {
	m := &MockTransmitter{ctrl: ctrl}
	m.recorder = &MockTransmitterMockRecorder{mock: m}
	return m
}

// EXPECT returns the recorder used to set up expected calls.
func (m *MockTransmitter) EXPECT() *MockTransmitterMockRecorder {
	return m.recorder
}

// SendUnicast mocks radio.Transmitter.SendUnicast.
func (m *MockTransmitter) SendUnicast(pkt *sdnwise.Packet) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendUnicast", pkt)
	err, _ := ret[0].(error)
	return err
}

// SendUnicast records an expected call to SendUnicast.
func (mr *MockTransmitterMockRecorder) SendUnicast(pkt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendUnicast", reflect.TypeOf((*MockTransmitter)(nil).SendUnicast), pkt)
}

// SendBroadcast mocks radio.Transmitter.SendBroadcast.
func (m *MockTransmitter) SendBroadcast(pkt *sdnwise.Packet) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendBroadcast", pkt)
	err, _ := ret[0].(error)
	return err
}

// SendBroadcast records an expected call to SendBroadcast.
func (mr *MockTransmitterMockRecorder) SendBroadcast(pkt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendBroadcast", reflect.TypeOf((*MockTransmitter)(nil).SendBroadcast), pkt)
}
