package messaging

// HealthStatus represents the health state of a messaging connection.
type HealthStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// CheckHealth reports the connection state of p. Publishers that are not
// broker clients, such as NopPublisher, report as disabled.
func CheckHealth(p Publisher) HealthStatus {
	client, ok := p.(interface{ IsConnected() bool })
	if !ok || p == nil {
		return HealthStatus{}
	}
	status := HealthStatus{Enabled: true, Connected: client.IsConnected()}
	if !status.Connected {
		status.Error = "not connected to message broker"
	}
	return status
}
