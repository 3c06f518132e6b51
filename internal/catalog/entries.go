package catalog

// Default returns the built-in template catalog.
func Default() *Catalog {
	return &Catalog{entries: map[string]map[string]string{
		// General conversation.
		"greeting_known": {
			LangEnglish: "Hello {name}! How can we help you today?",
			LangSwahili: "Habari {name}! Tunaweza kukusaidia vipi leo?",
		},
		"greeting_unknown": {
			LangEnglish: "Hello! Welcome to your property assistant. How can we help you today?",
			LangSwahili: "Habari! Karibu kwa msaidizi wa makao yako. Tunaweza kukusaidia vipi leo?",
		},
		"menu_maintenance": {
			LangEnglish: "Report an issue",
			LangSwahili: "Ripoti tatizo",
		},
		"menu_feedback": {
			LangEnglish: "Give feedback",
			LangSwahili: "Toa maoni",
		},
		"menu_onboarding": {
			LangEnglish: "Complete onboarding",
			LangSwahili: "Kamilisha usajili",
		},
		"choose": {
			LangEnglish: "Select",
			LangSwahili: "Chagua",
		},
		"confirm_yes": {LangEnglish: "Yes", LangSwahili: "Ndiyo"},
		"confirm_no":  {LangEnglish: "No", LangSwahili: "Hapana"},
		"session_expired": {
			LangEnglish: "Your session has expired. Please start again — say hello to see the menu.",
			LangSwahili: "Kikao chako kimeisha. Tafadhali anza tena — tuma salamu kuona menyu.",
		},
		"something_wrong": {
			LangEnglish: "Something went wrong on our side. Please try again.",
			LangSwahili: "Kuna hitilafu upande wetu. Tafadhali jaribu tena.",
		},

		// Onboarding.
		"language_english": {LangEnglish: "English", LangSwahili: "Kiingereza"},
		"language_swahili": {LangEnglish: "Kiswahili", LangSwahili: "Kiswahili"},
		"onboarding_language": {
			LangEnglish: "Welcome! Which language would you like to use?",
			LangSwahili: "Karibu! Ungependa kutumia lugha gani?",
		},
		"onboarding_name": {
			LangEnglish: "Great. What is your full name?",
			LangSwahili: "Vizuri. Jina lako kamili ni nani?",
		},
		"onboarding_movein": {
			LangEnglish: "Thanks {name}. What is your move-in date? (for example 15/03/2026)",
			LangSwahili: "Asante {name}. Tarehe yako ya kuhamia ni lini? (kwa mfano 15/03/2026)",
		},
		"onboarding_movein_invalid": {
			LangEnglish: "I couldn't read that date. Please send it as day/month/year, e.g. 15/03/2026.",
			LangSwahili: "Sikuweza kusoma tarehe hiyo. Tafadhali tuma kama siku/mwezi/mwaka, mfano 15/03/2026.",
		},
		"onboarding_contact": {
			LangEnglish: "Almost done. Who is your emergency contact? Send a name and phone number, e.g. \"Jane Mwangi 0712345678\".",
			LangSwahili: "Karibu tumalize. Mtu wako wa dharura ni nani? Tuma jina na nambari ya simu, mfano \"Jane Mwangi 0712345678\".",
		},
		"onboarding_contact_invalid": {
			LangEnglish: "I couldn't find a name and phone number in that message. Please send both, e.g. \"Jane Mwangi 0712345678\".",
			LangSwahili: "Sikupata jina na nambari ya simu kwenye ujumbe huo. Tafadhali tuma vyote, mfano \"Jane Mwangi 0712345678\".",
		},
		"onboarding_complete": {
			LangEnglish: "All set, {name}! Your onboarding is complete ({steps} steps). Say hello anytime you need help.",
			LangSwahili: "Imekamilika, {name}! Usajili wako umekamilika (hatua {steps}). Tuma salamu wakati wowote ukihitaji msaada.",
		},

		// Maintenance intake.
		"maintenance_category": {
			LangEnglish: "What kind of issue are you reporting?",
			LangSwahili: "Unaripoti tatizo la aina gani?",
		},
		"maintenance_category_invalid": {
			LangEnglish: "Please pick one of the listed categories.",
			LangSwahili: "Tafadhali chagua moja ya aina zilizoorodheshwa.",
		},
		"maintenance_description": {
			LangEnglish: "Please describe the problem briefly.",
			LangSwahili: "Tafadhali eleza tatizo kwa ufupi.",
		},
		"maintenance_urgency": {
			LangEnglish: "How urgent is it?",
			LangSwahili: "Ni la dharura kiasi gani?",
		},
		"maintenance_urgency_invalid": {
			LangEnglish: "Please choose one of the urgency options.",
			LangSwahili: "Tafadhali chagua moja ya viwango vya dharura.",
		},
		"category_plumbing":   {LangEnglish: "Plumbing", LangSwahili: "Mabomba"},
		"category_electrical": {LangEnglish: "Electrical", LangSwahili: "Umeme"},
		"category_appliance":  {LangEnglish: "Appliance", LangSwahili: "Vifaa"},
		"category_structural": {LangEnglish: "Structural", LangSwahili: "Jengo"},
		"category_other":      {LangEnglish: "Other", LangSwahili: "Nyingine"},
		"urgency_low":         {LangEnglish: "Not urgent", LangSwahili: "Si ya haraka"},
		"urgency_normal":      {LangEnglish: "Normal", LangSwahili: "Kawaida"},
		"urgency_urgent":      {LangEnglish: "Urgent", LangSwahili: "Haraka sana"},
		"maintenance_confirm": {
			LangEnglish: "Please confirm: {category} issue, urgency {urgency}. \"{description}\". Should we log this ticket?",
			LangSwahili: "Tafadhali thibitisha: tatizo la {category}, dharura {urgency}. \"{description}\". Tuweke tiketi hii?",
		},
		"maintenance_cancelled": {
			LangEnglish: "Okay, nothing was logged. Say hello anytime to start again.",
			LangSwahili: "Sawa, hakuna kilichowekwa. Tuma salamu wakati wowote kuanza tena.",
		},
		"maintenance_confirmed": {
			LangEnglish: "Your {category} issue has been logged (ticket {ticket}). Our team will be in touch. Summary: {description}",
			LangSwahili: "Tatizo lako la {category} limepokelewa (tiketi {ticket}). Timu yetu itawasiliana nawe. Muhtasari: {description}",
		},

		// Feedback.
		"feedback_rating": {
			LangEnglish: "How would you rate your experience with us?",
			LangSwahili: "Ungepima vipi huduma yetu?",
		},
		"feedback_rating_invalid": {
			LangEnglish: "Please pick a rating from 1 to 5.",
			LangSwahili: "Tafadhali chagua alama kati ya 1 na 5.",
		},
		"feedback_comment": {
			LangEnglish: "Thank you. Any comments you'd like to add? (or reply \"skip\")",
			LangSwahili: "Asante. Una maoni yoyote ya kuongeza? (au jibu \"ruka\")",
		},
		"feedback_thanks": {
			LangEnglish: "Thank you for your feedback!",
			LangSwahili: "Asante kwa maoni yako!",
		},

		// Emergency protocol.
		"emergency_confirm": {
			LangEnglish: "This sounds like it could be an emergency. What is happening?",
			LangSwahili: "Hii inaonekana inaweza kuwa dharura. Nini kinaendelea?",
		},
		"emergency_type_fire":       {LangEnglish: "Fire", LangSwahili: "Moto"},
		"emergency_type_flood":      {LangEnglish: "Flooding", LangSwahili: "Mafuriko"},
		"emergency_type_other":      {LangEnglish: "Other emergency", LangSwahili: "Dharura nyingine"},
		"emergency_cancel":          {LangEnglish: "No emergency", LangSwahili: "Hakuna dharura"},
		"emergency_cancelled": {
			LangEnglish: "Understood, no emergency. Stay safe! Say hello if you need anything else.",
			LangSwahili: "Sawa, hakuna dharura. Kaa salama! Tuma salamu ukihitaji chochote kingine.",
		},
		"emergency_update_ack": {
			LangEnglish: "Noted and added to the incident report. Help is being coordinated — stay safe.",
			LangSwahili: "Imepokelewa na kuongezwa kwenye ripoti. Msaada unaratibiwa — kaa salama.",
		},
		"emergency_resolved": {
			LangEnglish: "This emergency has been marked resolved after {duration}. Thank you for reporting it — stay safe.",
			LangSwahili: "Dharura hii imetatuliwa baada ya {duration}. Asante kwa kuripoti — kaa salama.",
		},
		"emergency_contact_alert": {
			LangEnglish: "EMERGENCY ALERT: {type} reported by {reporter} at {property} {unit} ({time}). Please respond immediately.",
			LangSwahili: "TAARIFA YA DHARURA: {type} imeripotiwa na {reporter} katika {property} {unit} ({time}). Tafadhali jibu mara moja.",
		},

		// Safety instructions per emergency type.
		"instructions_fire": {
			LangEnglish: "FIRE SAFETY: Leave the building immediately. Do not use lifts. Stay low if there is smoke. Do not go back for belongings. Help is on the way.",
			LangSwahili: "USALAMA WA MOTO: Toka kwenye jengo mara moja. Usitumie lifti. Kaa chini kama kuna moshi. Usirudi kuchukua vitu. Msaada unakuja.",
		},
		"instructions_flood": {
			LangEnglish: "FLOODING: Switch off electricity at the mains if safe to reach. Move to higher ground. Avoid standing water near sockets. Help is on the way.",
			LangSwahili: "MAFURIKO: Zima umeme kwenye mains ikiwa ni salama kufika. Nenda sehemu ya juu. Epuka maji yaliyosimama karibu na soketi. Msaada unakuja.",
		},
		"instructions_break_in": {
			LangEnglish: "BREAK-IN: Keep yourself safe first — do not confront the intruder. Lock yourself in a safe room if possible. Security has been alerted.",
			LangSwahili: "UVAMIZI: Jilinde kwanza — usimkabili mvamizi. Jifungie kwenye chumba salama ikiwezekana. Walinzi wamearifiwa.",
		},
		"instructions_gas_leak": {
			LangEnglish: "GAS LEAK: Do not use flames or electrical switches. Open windows and leave the area. Do not return until cleared. Help is on the way.",
			LangSwahili: "UVUJAJI WA GESI: Usitumie moto wala swichi za umeme. Fungua madirisha na uondoke. Usirudi hadi uruhusiwe. Msaada unakuja.",
		},
		"instructions_electrical": {
			LangEnglish: "ELECTRICAL HAZARD: Keep away from the affected area. Do not touch exposed wires or wet surfaces near power. Switch off the mains if safe. Help is on the way.",
			LangSwahili: "HATARI YA UMEME: Kaa mbali na eneo husika. Usiguse nyaya wazi au sehemu zenye maji karibu na umeme. Zima mains ikiwa ni salama. Msaada unakuja.",
		},
		"instructions_medical": {
			LangEnglish: "MEDICAL EMERGENCY: Stay with the person and keep them comfortable. Do not move them if injured. Medical contacts have been alerted.",
			LangSwahili: "DHARURA YA AFYA: Kaa na mgonjwa na umtulize. Usimsogeze kama ameumia. Wahudumu wa afya wamearifiwa.",
		},
		"instructions_other": {
			LangEnglish: "Your emergency has been reported and the property team alerted. Stay safe and keep us updated here.",
			LangSwahili: "Dharura yako imeripotiwa na timu ya mali imearifiwa. Kaa salama na utupe taarifa hapa.",
		},
	}}
}
