package models

// ServiceCenter is a physical service location as published by the directory feed.
type ServiceCenter struct {
	ID                      string `json:"id" yaml:"id"`
	Name                    string `json:"name" yaml:"name"`
	Location                string `json:"location" yaml:"location"`
	QueueLength             int64  `json:"queue_length" yaml:"queue_length"`
	WaitTimeEstimateMinutes int    `json:"wait_time_estimate_minutes" yaml:"wait_time_estimate_minutes"`
	OperatingHours          string `json:"operating_hours" yaml:"operating_hours"`
}

func (c ServiceCenter) Validate() error {
	if c.ID == "" {
		return ErrInvalidCenter
	}
	if c.QueueLength < 0 || c.WaitTimeEstimateMinutes < 0 {
		return ErrInvalidCenter
	}
	return nil
}
