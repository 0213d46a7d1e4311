package services

// TableConfig names the backend tables and fields the intake flow reads
// and writes. Every name can be overridden in configuration; the zero
// value is unusable, so construct with DefaultTableConfig.
type TableConfig struct {
	ClaimsTable        string
	ClaimIdentityField string
	ClaimClassField    string
	ClaimNotesField    string
	ClaimFilesField    string

	CategoriesTable   string
	CategoryNameField string

	ApplicantsTable        string
	ApplicantIdentityField string
	ApplicantClassField    string

	SubscriptionsTable     string
	SubscriptionLinkField  string
	SubscriptionNameField  string
	SubscriptionEmailField string
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ClaimsTable:        "Claims",
		ClaimIdentityField: "Email",
		ClaimClassField:    "Class",
		ClaimNotesField:    "Notes",
		ClaimFilesField:    "Attachments",

		CategoriesTable:   "Classes",
		CategoryNameField: "Name",

		ApplicantsTable:        "Applicants",
		ApplicantIdentityField: "Email",
		ApplicantClassField:    "Class",

		SubscriptionsTable:     "Subscriptions",
		SubscriptionLinkField:  "Class",
		SubscriptionNameField:  "Class Name",
		SubscriptionEmailField: "Recipients",
	}
}
