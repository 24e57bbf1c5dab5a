package questionnaire

// Checklist control identifiers. Scope is collected but not scored.
const (
	ControlFirewalls     = "firewalls"
	ControlSecureConfig  = "secureConfig"
	ControlUpdates       = "updates"
	ControlAccessControl = "accessControl"
	ControlMalware       = "malware"
	ControlScope         = "scope"
)

// ScoredControls are the five technical controls that receive a score.
var ScoredControls = []string{
	ControlFirewalls,
	ControlSecureConfig,
	ControlUpdates,
	ControlAccessControl,
	ControlMalware,
}

// Free-text field keys.
const (
	TextOutdatedSoftware = "outdatedSoftware"
	TextDeviceCount      = "deviceCount"
	TextCloudServices    = "cloudServices"
	TextFirewallDetails  = "firewallDetails"
	TextMalwareDetails   = "malwareDetails"
	TextBackupDetails    = "backupDetails"
	TextIncidentDetails  = "incidentDetails"
)

// Extra scope questions handled outside the control loop.
const (
	QuestionBackup   = "q6_backup"
	QuestionIncident = "q6_incident"
)

var checklistCatalog = newCatalog(
	VariantChecklist,
	[]string{ControlFirewalls, ControlSecureConfig, ControlUpdates, ControlAccessControl, ControlMalware, ControlScope},
	[]string{string(Pass), string(Partial), string(Fail), string(Unsure)},
	[]Question{
		{ID: "q1_1", Group: ControlFirewalls, Critical: true, Text: "Firewalls are enabled on every device and internet boundary"},
		{ID: "q1_2", Group: ControlFirewalls, Critical: true, Text: "Default firewall and router passwords have been changed"},
		{ID: "q1_3", Group: ControlFirewalls, Critical: true, Text: "Unauthenticated inbound connections are blocked by default"},
		{ID: "q1_4", Group: ControlFirewalls, Text: "Inbound rule exceptions are documented and approved",
			Visibility: &Predicate{Parent: "q1_3", Allowed: []string{string(Pass), string(Partial)}}},

		{ID: "q2_1", Group: ControlSecureConfig, Critical: true, Text: "Guest and unused accounts are removed or disabled"},
		{ID: "q2_2", Group: ControlSecureConfig, Text: "Unnecessary software and services are removed"},
		{ID: "q2_3", Group: ControlSecureConfig, Critical: true, Text: "Auto-run is disabled"},
		{ID: "q2_4", Group: ControlSecureConfig, Critical: true, Text: "Users authenticate before accessing organisational data or services"},
		{ID: "q2_5", Group: ControlSecureConfig, Critical: true, Text: "Devices lock with a password or PIN"},

		{ID: "q3_1", Group: ControlUpdates, Critical: true, Text: "All software is licensed and supported"},
		{ID: "q3_2", Group: ControlUpdates, Critical: true, Text: "Automatic updates are enabled where possible"},
		{ID: "q3_3", Group: ControlUpdates, Critical: true, Text: "Critical and high-risk updates are applied within 14 days"},
		{ID: "q3_4", Group: ControlUpdates, Text: "Unsupported software is isolated in a segregated sub-set",
			Visibility: &Predicate{Parent: "q3_1", Allowed: []string{string(Fail), string(Unsure)}}},

		{ID: "q4_1", Group: ControlAccessControl, Critical: true, Text: "Every user has an individual account"},
		{ID: "q4_2", Group: ControlAccessControl, Critical: true, Text: "Accounts are removed promptly when staff leave"},
		{ID: "q4_3", Group: ControlAccessControl, Critical: true, Text: "Multi-factor authentication is enabled on all cloud services"},
		{ID: "q4_4", Group: ControlAccessControl, Critical: true, Text: "Administrative accounts are used only for administration"},
		{ID: "q4_5", Group: ControlAccessControl, Critical: true, Text: "Password policy meets the minimum requirements"},
		{ID: "q4_6", Group: ControlAccessControl, Text: "Access rights are reviewed periodically"},

		{ID: "q5_1", Group: ControlMalware, Critical: true, Text: "Anti-malware or application allow listing is in place on all devices"},
		{ID: "q5_2", Group: ControlMalware, Critical: true, Text: "Anti-malware software is enabled and running"},
		{ID: "q5_3", Group: ControlMalware, Critical: true, Text: "Anti-malware definitions update automatically"},
		{ID: "q5_4", Group: ControlMalware, Text: "Connections to known malicious websites are blocked"},

		{ID: "q6_1", Group: ControlScope, Text: "The whole organisation is in scope"},
		{ID: "q6_2", Group: ControlScope, Critical: true, Text: "All cloud services are included in scope"},
		{ID: "q6_3", Group: ControlScope, Text: "Personally owned devices accessing organisational data are included",
			Visibility: &Predicate{Parent: "q6_1", Allowed: []string{string(Pass)}}},
		{ID: QuestionBackup, Group: ControlScope, Text: "Critical data is backed up automatically"},
		{ID: "q6_backup_test", Group: ControlScope, Text: "Backups are restored as a test at least annually",
			Visibility: &Predicate{Parent: QuestionBackup, Allowed: []string{string(Pass)}}},
		{ID: QuestionIncident, Group: ControlScope, Text: "A documented incident response plan exists"},
	},
	[]TextField{
		{Key: TextFirewallDetails, Label: "Firewall solution(s)", Group: ControlFirewalls},
		{Key: TextOutdatedSoftware, Label: "Outdated software list", Group: ControlUpdates},
		{Key: TextMalwareDetails, Label: "Anti-malware software details", Group: ControlMalware},
		{Key: TextDeviceCount, Label: "Number of devices in scope", Group: ControlScope},
		{Key: TextCloudServices, Label: "Cloud services list", Group: ControlScope},
		{Key: TextBackupDetails, Label: "Backup solution description", Group: ControlScope},
		{Key: TextIncidentDetails, Label: "Incident response procedures", Group: ControlScope},
	},
	1,
)

// Checklist returns the five-control checklist catalog.
func Checklist() *Catalog { return checklistCatalog }
