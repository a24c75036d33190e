package safety

// Constraints is appended to writer instructions so generated content stays
// within policy even when the gate passes a topic.
const Constraints = `Do not provide instructions for creating weapons, explosives, or harmful substances.
Always include appropriate disclaimers for medical, legal, or financial information.
Cite sources for all factual claims.
Refuse to generate content promoting violence, hate speech, or illegal activities.
If uncertain about a fact, explicitly state the uncertainty.`
