package application

import "github.com/handlebauer/ar-io-observer/internal/entity"

// ProgressObserver is notified as each gateway assessment completes during
// GenerateReport. Implementations (metrics, dashboards) must not block the
// report builder and must not affect the assembled report.
type ProgressObserver interface {
	OnGatewayStarted(fqdn string)
	OnGatewayAssessed(fqdn string, assessment entity.GatewayAssessment)
}

// NoopObserver discards every notification.
type NoopObserver struct{}

func (NoopObserver) OnGatewayStarted(string)                            {}
func (NoopObserver) OnGatewayAssessed(string, entity.GatewayAssessment) {}

// multiObserver fans a notification out to several observers.
type multiObserver []ProgressObserver

func (m multiObserver) OnGatewayStarted(fqdn string) {
	for _, o := range m {
		o.OnGatewayStarted(fqdn)
	}
}

func (m multiObserver) OnGatewayAssessed(fqdn string, assessment entity.GatewayAssessment) {
	for _, o := range m {
		o.OnGatewayAssessed(fqdn, assessment)
	}
}

// MultiObserver combines several observers into one.
func MultiObserver(observers ...ProgressObserver) ProgressObserver {
	return multiObserver(observers)
}
