package email

const subjectLeadWonFmt = "Lead won: %s"
