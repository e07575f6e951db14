// Package device holds the projector domain vocabulary shared by every
// other package: power states, models, status triggers and transitions.
//
// It also owns the local transition history, a small SQLite table that
// records every power change the reconciler observes.
//
// # Usage
//
//	model, err := device.ParseModel(cfg.Device.Model)
//	label := model.Label(cfg.Device.Serial.Baud) // "Canon (19200 Baud)"
//
//	repo := device.NewSQLiteStateHistoryRepository(db.DB)
//	rec.AddListener(device.NewHistoryRecorder(repo, logger))
package device
