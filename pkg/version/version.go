package version

// GitVersion is overridden at build time via
// -ldflags "-X github.com/goldfinchbio/aws-gatk-sv/pkg/version.GitVersion=...".
var GitVersion = "v0.0.0-dev"

func Get() string {
	return GitVersion
}
