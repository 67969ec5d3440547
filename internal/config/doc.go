// Package config loads, normalizes, and validates pressroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PRESSROOM_STATE_DIR. The Config type centralizes every knob the planner,
// uniqueness guard, and image matcher need: scoring weights, revenue model
// parameters, lineup bounds, similarity thresholds, and the overuse curve.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical term lists, and clear validation errors.
package config
