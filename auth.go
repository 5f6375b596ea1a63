package s3publish

import (
	"fmt"
	"os"
	"strings"
)

// DefaultService is the signing service name for S3.
const DefaultService = "s3"

// Credentials for an Amazon Web Services account, scoped to one region.
// Used for signing requests; loaded once and never modified.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Service         string // defaults to DefaultService
}

func (c Credentials) service() string {
	if c.Service == "" {
		return DefaultService
	}
	return c.Service
}

// Validate reports every missing required field as a single ErrConfig.
func (c Credentials) Validate() error {
	var missing []string
	if c.AccessKeyID == "" {
		missing = append(missing, "access key id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secret access key")
	}
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}

// EnvCredentials reads the credentials from the environment.
func EnvCredentials() (creds Credentials, err error) {
	creds = Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Region:          os.Getenv("AWS_REGION"),
		Service:         DefaultService,
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" || creds.Region == "" {
		err = fmt.Errorf("%w: not set in environment: AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY", ErrConfig)
	}
	return
}
