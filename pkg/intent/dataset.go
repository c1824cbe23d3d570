package intent

// Known labels. The label set is closed and versioned with the artifact;
// new labels require retraining plus a control-table entry, never
// special-casing in consuming components.
const (
	LabelHR      = "hr"
	LabelManager = "manager"
	LabelClient  = "client"
	LabelCollege = "college"
	LabelGeneral = "general"
)

// DefaultDataset is the built-in labeled example set used when no external
// artifact is provisioned, and the starting corpus for `draftgen model
// train`. Classes are kept balanced so softmax confidences are not skewed
// by priors.
var DefaultDataset = []Example{
	// hr: employee writing to the HR department
	{"write an email to hr asking about my remaining leave balance for this year", LabelHR},
	{"i need to contact hr about a mistake in my payroll for last month", LabelHR},
	{"ask the hr department to share my employment verification letter", LabelHR},
	{"email hr to update my bank account details for salary payments", LabelHR},
	{"request hr for details about the health insurance enrollment window", LabelHR},
	{"write to hr regarding my pending relocation allowance claim", LabelHR},
	{"ask human resources about the notice period in my employment contract", LabelHR},
	{"i want to ask hr about maternity leave policy and required documents", LabelHR},
	{"follow up with hr on the status of my background verification", LabelHR},
	{"email the hr team to correct my designation in the employee portal", LabelHR},
	{"request a salary certificate from hr for my visa application", LabelHR},
	{"write to hr asking how to enroll my family in the benefits plan", LabelHR},

	// manager: employee writing to their manager
	{"write an email to my manager requesting two days of leave next week", LabelManager},
	{"send my manager a status update on the migration project", LabelManager},
	{"ask my manager for a deadline extension on the quarterly report", LabelManager},
	{"inform my manager that the release will slip by three days", LabelManager},
	{"request approval from my manager for the training budget", LabelManager},
	{"write to my manager about working from home on friday", LabelManager},
	{"email my manager summarizing the outcome of the sprint review", LabelManager},
	{"ask my manager to schedule a one on one to discuss my growth plan", LabelManager},
	{"tell my manager i will be out of office for a medical appointment", LabelManager},
	{"share the incident postmortem summary with my manager", LabelManager},
	{"ask my manager for feedback on the design document i shared", LabelManager},
	{"notify my manager that the vendor delivery is delayed", LabelManager},

	// client: consultant or vendor writing to a client
	{"i am a consultant advising a client on their billing policy, write a summary email", LabelClient},
	{"send the client a proposal for the second phase of the engagement", LabelClient},
	{"write to our client about the revised project timeline and milestones", LabelClient},
	{"follow up with the client on the unpaid invoice from march", LabelClient},
	{"as a consultant i need to share the audit findings with the client", LabelClient},
	{"email the client to confirm the scope of the consulting engagement", LabelClient},
	{"write to the client summarizing the recommendations from our advisory review", LabelClient},
	{"send a contract renewal reminder to our longest running client", LabelClient},
	{"i am advising an organization on their procurement policy, draft an update for their board", LabelClient},
	{"share the deliverables checklist with the client before the kickoff", LabelClient},
	{"write a polite email to the client rescheduling the advisory workshop", LabelClient},
	{"as their consultant, summarize the policy assessment for the client leadership", LabelClient},

	// college: student writing to college administration
	{"i am a student and my semester fees are still showing as pending", LabelCollege},
	{"write to the college office asking for my bonafide certificate", LabelCollege},
	{"ask the accounts office about the late payment fine on my tuition fees", LabelCollege},
	{"email the registrar requesting an official copy of my transcript", LabelCollege},
	{"as a student i want to apply for the merit scholarship this semester", LabelCollege},
	{"request the warden for a room change in the hostel", LabelCollege},
	{"write to my professor asking for an extension on the assignment", LabelCollege},
	{"ask the examination cell about my pending revaluation result", LabelCollege},
	{"email the admission office about the documents needed for enrollment", LabelCollege},
	{"i am a student requesting attendance condonation for medical reasons", LabelCollege},
	{"write to the college asking for a duplicate identity card", LabelCollege},
	{"ask the placement cell about the upcoming campus interviews", LabelCollege},

	// general: none of the above
	{"write a thank you note to my neighbor for watching my dog", LabelGeneral},
	{"congratulate an old friend on their wedding", LabelGeneral},
	{"write an apology email for missing the dinner last weekend", LabelGeneral},
	{"invite my cousins to the housewarming party next month", LabelGeneral},
	{"write to the landlord about the leaking kitchen tap", LabelGeneral},
	{"ask the store when my repaired watch will be ready", LabelGeneral},
	{"write a short email checking in on a friend who moved abroad", LabelGeneral},
	{"thank the organizers of the charity run for a great event", LabelGeneral},
	{"write to the gym asking to pause my membership for a month", LabelGeneral},
	{"send a get well soon message to a relative in hospital", LabelGeneral},
	{"ask the library about renewing the books i borrowed", LabelGeneral},
	{"write an email wishing my uncle a happy retirement", LabelGeneral},
}
