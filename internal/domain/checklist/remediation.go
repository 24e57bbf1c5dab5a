package checklist

// Remediation is the fixed impact/action text for a failed question.
type Remediation struct {
	Impact string
	Action string
}

const (
	defaultImpact = "This is a mandatory requirement for Cyber Essentials certification"
	defaultAction = "Implement this control immediately to meet certification requirements"

	warningRecommendation = "While not critical, addressing this will strengthen your security posture and improve certification readiness"

	encouragement = "You've started the assessment - that's the first step!"
)

// Remediations maps question ids to their remediation text.
var Remediations = map[string]Remediation{
	"q1_1":        {Action: "Enable built-in firewalls (Windows Defender Firewall, macOS Firewall) on all devices immediately", Impact: "Without firewalls, devices are exposed to network-based attacks"},
	"q1_2":        {Action: "Change all default passwords on routers and firewalls to strong, unique passwords (12+ characters)", Impact: "Default passwords are publicly known and easily exploited by attackers"},
	"q1_3":        {Action: "Configure firewalls to block all incoming connections by default (deny-all policy)", Impact: "Open firewalls allow attackers easy access to your network"},
	"q2_1":        {Action: "Remove or disable all guest accounts and any unused user accounts", Impact: "Unused accounts are a security risk and potential entry point for attackers"},
	"q2_3":        {Action: "Disable auto-run/auto-execute features in Windows and other operating systems", Impact: "Auto-run can execute malicious files without user permission"},
	"q2_4":        {Action: "Implement authentication requirements before accessing any organizational data or services", Impact: "Unauthenticated access allows anyone to access sensitive business data"},
	"q2_5":        {Action: "Enable screen lock on all devices with a 6+ character password or PIN", Impact: "Unlocked devices can be accessed by anyone with physical access"},
	"q3_1":        {Action: "Replace all unsupported software immediately - this is a critical requirement", Impact: "Unsupported software receives no security updates and is highly vulnerable"},
	"q3_2":        {Action: "Enable automatic updates on all devices and software", Impact: "Without automatic updates, critical security patches may be missed"},
	"q3_3":        {Action: "Establish a process to apply critical/high-risk updates within 14 days of release", Impact: "Delayed patching leaves systems vulnerable to known exploits"},
	"q4_1":        {Action: "Create individual accounts for each user - no shared logins allowed", Impact: "Shared accounts make it impossible to track who did what and prevent accountability"},
	"q4_2":        {Action: "Implement a process to disable/remove accounts immediately when employees leave", Impact: "Former employees with active accounts can access sensitive data they should not have"},
	"q4_3":        {Action: "Enable Multi-Factor Authentication (MFA) on ALL cloud services - this is MANDATORY", Impact: "Without MFA, a single stolen password gives attackers full access to cloud services"},
	"q4_4":        {Action: "Create separate admin accounts used ONLY for administrative tasks", Impact: "Using admin accounts for daily tasks exposes high privileges to malware and phishing"},
	"q4_5":        {Action: "Implement one of the required password policies: MFA + 8 chars, OR 12+ chars, OR 8+ chars with blocklist", Impact: "Weak passwords can be easily guessed or cracked by attackers"},
	"q5_1":        {Action: "Install and activate anti-malware software on all devices OR implement application allow listing", Impact: "Without malware protection, your systems are vulnerable to viruses, ransomware, and other threats"},
	"q5_2":        {Action: "Ensure anti-malware software is enabled and running on all devices", Impact: "Disabled antivirus provides no protection against malware"},
	"q5_3":        {Action: "Enable automatic updates for anti-malware definitions", Impact: "Outdated malware definitions cannot detect new threats"},
	"q6_2":        {Action: "Include ALL cloud services in scope - cloud services cannot be excluded", Impact: "Excluding cloud services leaves a major security gap and violates Cyber Essentials requirements"},
	"q6_backup":   {Action: "Implement automated backup procedures with at least daily backups of critical data", Impact: "Without backups, ransomware attacks or hardware failures could result in permanent data loss"},
	"q6_incident": {Action: "Create and document an incident response plan covering detection, containment, and recovery procedures", Impact: "Without a plan, security incidents will be handled inconsistently, leading to longer recovery times and greater damage"},
}

// RemediationFor returns the table entry for id or the generic fallback.
func RemediationFor(id string) Remediation {
	if r, ok := Remediations[id]; ok {
		return r
	}
	return Remediation{Impact: defaultImpact, Action: defaultAction}
}

// StrengthQuestions are critical questions recorded as strengths on pass.
var StrengthQuestions = map[string]bool{
	"q1_1": true,
	"q3_2": true,
	"q4_3": true,
}

// extraFinding is the fixed text for backup/incident answers, which sit
// outside the scored controls.
type extraFinding struct {
	Warning        string
	Recommendation string
	Strength       string
}

var extras = map[string]extraFinding{
	"q6_backup": {
		Warning:        "No regular backup procedure in place",
		Recommendation: "While not required for Cyber Essentials, implementing automated backups is CRITICAL for ransomware recovery and business continuity. Consider cloud backup solutions like Azure Backup, AWS Backup, or Veeam.",
		Strength:       "Automated backup procedures in place with documented recovery",
	},
	"q6_incident": {
		Warning:        "No documented incident response plan",
		Recommendation: "Create a simple incident response plan covering: 1) Who to contact, 2) How to isolate affected systems, 3) When to notify authorities, 4) Communication procedures. The NCSC provides free templates.",
		Strength:       "Documented and tested incident response plan",
	},
}
