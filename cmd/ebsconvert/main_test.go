package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"REGION", "VOLUME_TYPES", "TARGET_VOLUME_TYPE", "DDB_TABLE", "SNS_TOPIC_ARN", "OPT_IN_TAG", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func execute(args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	c := qt.New(t)
	out, err := execute("version")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Matches, "ebsconvert dev .*\n")
}

func TestRunRequiresTable(t *testing.T) {
	c := qt.New(t)
	clearEnv(t)
	_, err := execute("run", "--dry-run")
	c.Assert(err, qt.ErrorMatches, "audit table is required.*")
}

func TestRunRejectsUnknownOutput(t *testing.T) {
	c := qt.New(t)
	clearEnv(t)
	t.Setenv("DDB_TABLE", "conversions")
	t.Setenv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:ebs")
	_, err := execute("run", "--output", "yaml")
	c.Assert(err, qt.ErrorMatches, `output: unsupported value "yaml"`)
}

func TestRunBackendFlagsIgnoreCase(t *testing.T) {
	c := qt.New(t)
	clearEnv(t)
	t.Setenv("DDB_TABLE", "conversions")
	t.Setenv("SNS_TOPIC_ARN", "ebs.conversions")
	t.Setenv("SQLITE_PATH", filepath.Join(c.TempDir(), "audit.db"))
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")

	// validation passes, so the run stops at the output check
	_, err := execute("run", "--audit-backend", " SQLite", "--notify-backend", "NATS ", "--output", "yaml")
	c.Assert(err, qt.ErrorMatches, `output: unsupported value "yaml"`)
}

func TestReportBackendFlagIgnoresCase(t *testing.T) {
	c := qt.New(t)
	clearEnv(t)
	_, err := execute("report", "vol-1", "--audit-backend", "DynamoDB")
	c.Assert(err, qt.ErrorMatches, "audit table is required.*")
}

func TestReportRequiresVolumeID(t *testing.T) {
	c := qt.New(t)
	_, err := execute("report")
	c.Assert(err, qt.ErrorMatches, "accepts 1 arg.*")
}

func TestLoadConfigFlagsOverrideFileAndEnvironment(t *testing.T) {
	c := qt.New(t)
	clearEnv(t)
	path := filepath.Join(c.TempDir(), "ebsconvert.toml")
	err := os.WriteFile(path, []byte(`
region = "eu-west-1"
volume_types = ["gp2"]
opt_in_tag = "FromFile"
`), 0o644)
	c.Assert(err, qt.IsNil)
	t.Setenv("REGION", "us-west-2")

	opts := &rootOptions{}
	discover, _, err := buildRootCommand(opts).Find([]string{"discover"})
	c.Assert(err, qt.IsNil)
	c.Assert(discover.ParseFlags([]string{"--config", path, "--volume-types", "gp2,io1"}), qt.IsNil)

	cfg, err := loadConfig(discover, opts)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Region, qt.Equals, "us-west-2")
	c.Assert(cfg.SourceVolumeTypes, qt.DeepEquals, []string{"gp2", "io1"})
	c.Assert(cfg.OptInTag, qt.Equals, "FromFile")
}
