package config

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"time"

	"scrubarr/internal/services"
)

// Instance is a validated Sonarr backend ready to construct a client for.
type Instance struct {
	Index          int
	Name           string
	URL            string
	APIKey         string
	BasePath       string
	RequestTimeout time.Duration
	PageSize       int
}

// InstanceName is the log and notification label for index.
func InstanceName(index int) string {
	return fmt.Sprintf("sonarr-%d", index)
}

// InstanceError reports one Sonarr entry that cannot be used.
type InstanceError struct {
	Key string
	Err error
}

func (e *InstanceError) Error() string { return e.Err.Error() }

func (e *InstanceError) Unwrap() error { return e.Err }

// Instances returns every usable Sonarr entry in ascending index order, plus
// one *InstanceError (marked services.ErrConfiguration) per unusable entry.
func (c *Config) Instances() ([]Instance, []error) {
	var (
		instances []Instance
		errs      []error
	)
	for _, key := range slices.Sorted(maps.Keys(c.Sonarr)) {
		entry := c.Sonarr[key]
		index, err := parseIndex(key)
		if err != nil {
			errs = append(errs, &InstanceError{Key: key, Err: services.Wrap(services.ErrConfiguration, "sonarr."+key, "configure instance", err.Error(), nil)})
			continue
		}
		name := InstanceName(index)
		if msg := checkInstance(entry); msg != "" {
			errs = append(errs, &InstanceError{Key: key, Err: services.Wrap(services.ErrConfiguration, name, "configure instance", msg, nil)})
			continue
		}
		instances = append(instances, Instance{
			Index:          index,
			Name:           name,
			URL:            entry.URL,
			APIKey:         entry.APIKey,
			BasePath:       entry.BasePath,
			RequestTimeout: time.Duration(entry.RequestTimeout) * time.Second,
			PageSize:       entry.PageSize,
		})
	}
	slices.SortFunc(instances, func(a, b Instance) int { return cmp.Compare(a.Index, b.Index) })
	return instances, errs
}

// Instance looks up one usable instance by index.
func (c *Config) Instance(index int) (Instance, error) {
	instances, errs := c.Instances()
	for _, instance := range instances {
		if instance.Index == index {
			return instance, nil
		}
	}
	for _, err := range errs {
		var instErr *InstanceError
		if errors.As(err, &instErr) && instErr.Key == strconv.Itoa(index) {
			return Instance{}, err
		}
	}
	return Instance{}, services.Wrap(services.ErrConfiguration, InstanceName(index), "configure instance", "not configured", nil)
}

func checkInstance(entry Sonarr) string {
	if entry.APIKey == "" {
		return "api_key is required"
	}
	if entry.URL == "" {
		return "url is required"
	}
	parsed, err := url.Parse(entry.URL)
	if err != nil {
		return fmt.Sprintf("url %q is invalid: %v", entry.URL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Sprintf("url %q must use http or https", entry.URL)
	}
	if parsed.Host == "" {
		return fmt.Sprintf("url %q has no host", entry.URL)
	}
	if entry.RequestTimeout < 0 {
		return "request_timeout must be positive"
	}
	if entry.PageSize < 0 {
		return "page_size must be positive"
	}
	return ""
}
