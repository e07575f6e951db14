// Package config handles loading and validating the beamer bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Factory defaults leave the device model and the broker host empty, so a
// fresh install polls nothing and never touches the bus until configured.
//
// Security Considerations:
//   - Broker and admin passwords should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.Hostname)
package config
