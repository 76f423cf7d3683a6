package main

// Character rosters. Ambient characters only wander and chat; hostile ones
// patrol during curfew and freeze students they corner.

func ambientNPCDefinitions() []NPCDefinition {
	return []NPCDefinition{
		{
			ID:    "dumbledore",
			Name:  "Albus Dumbledore",
			Title: "Headmaster",
			Dialogues: []string{
				"Ah, lemon drops!",
				"It does not do to dwell on dreams and forget to live.",
				"Happiness can be found in the darkest of times...",
				"Words are our most inexhaustible source of magic.",
				"It is our choices that show what we truly are.",
			},
			Home:  vec2{X: 600, Y: 250},
			Speed: npcWalkSpeed * 0.8,
		},
		{
			ID:    "mcgonagall",
			Name:  "Minerva McGonagall",
			Title: "Deputy Headmistress",
			Dialogues: []string{
				"Five points from your house!",
				"I should have made myself clearer.",
				"We teachers are rather good at magic, you know.",
				"Is it true you shouted at Professor Umbridge?",
				"Have a biscuit, Potter.",
			},
			Home:  vec2{X: 350, Y: 450},
			Speed: npcWalkSpeed,
		},
		{
			ID:    "peeves",
			Name:  "Peeves",
			Title: "Poltergeist",
			Dialogues: []string{
				"Oooh, ickle firsties!",
				"STUDENTS OUT OF BED!",
				"Naughty, naughty, you'll get caughty!",
				"Potty wee Potter!",
				"Oh, most think he's barking, the potty wee lad!",
			},
			Home:    vec2{X: 500, Y: 380},
			Speed:   npcWalkSpeed * 1.5,
			Erratic: true,
		},
		{
			ID:    "filch",
			Name:  "Argus Filch",
			Title: "Caretaker",
			Dialogues: []string{
				"Students out of bed!",
				"I'll have you in detention!",
				"Mrs. Norris will find you...",
				"In the old days, they let us hang students by their ankles.",
				"Running in the corridors!",
			},
			Home:  vec2{X: 220, Y: 350},
			Speed: npcWalkSpeed * 0.9,
		},
		{
			ID:    "hagrid",
			Name:  "Rubeus Hagrid",
			Title: "Keeper of Keys",
			Dialogues: []string{
				"I should not have said that.",
				"Yer a wizard, Harry!",
				"What's comin' will come, an' we'll meet it when it does.",
				"There's no Hogwarts without you, Hagrid.",
				"I am what I am, an' I'm not ashamed.",
			},
			Home:  vec2{X: 850, Y: 500},
			Speed: npcWalkSpeed * 0.7,
		},
	}
}

func hostileNPCDefinitions() []NPCDefinition {
	return []NPCDefinition{
		{
			ID:      "snape",
			Name:    "Severus Snape",
			Title:   "Potions Master",
			Hostile: true,
			Dialogues: []string{
				"What are you doing out of bed, Potter?!",
				"Detention! My office, tomorrow night!",
				"Obviously fame isn't everything, is it?",
				"I can teach you how to bewitch the mind and ensnare the senses...",
				"Fifty points from your house!",
				"You dare wander the corridors at this hour?",
			},
			Home:         vec2{X: 280, Y: 450},
			Speed:        npcWalkSpeed * 1.2,
			WanderRadius: 250,
		},
		{
			ID:      "filch_scary",
			Name:    "Argus Filch",
			Title:   "Caretaker",
			Hostile: true,
			Dialogues: []string{
				"STUDENTS OUT OF BED! STUDENTS IN THE CORRIDORS!",
				"Mrs. Norris spotted you... You're in big trouble now!",
				"I'll have you strung up by your thumbs!",
				"In my office... NOW!",
				"Sneaking around at night, are we?",
				"I've got you now, you little brat!",
			},
			Home:         vec2{X: 500, Y: 380},
			Speed:        npcWalkSpeed,
			WanderRadius: 300,
		},
		{
			ID:      "dementor",
			Name:    "Dementor",
			Title:   "Dark Creature",
			Hostile: true,
			Dialogues: []string{
				"*A bone-chilling cold surrounds you...*",
				"*Your happiest memories begin to fade...*",
				"*The temperature drops... You can see your breath...*",
				"*A rattling, sucking sound fills the air...*",
				"*You feel all hope draining away...*",
			},
			Home:         vec2{X: 750, Y: 450},
			Speed:        npcWalkSpeed * 0.8,
			WanderRadius: 200,
			Ghostly:      true,
		},
		{
			ID:      "peeves_scary",
			Name:    "Peeves",
			Title:   "Poltergeist",
			Hostile: true,
			Dialogues: []string{
				"OOOOOH! Ickle student out of bed!",
				"STUDENT ALERT! STUDENT ALERT!",
				"Naughty naughty, you'll get CAUGHTY!",
				"Should I call Filch? Or should I call SNAPE?!",
				"Potty wee students wandering at night!",
				"WEEEEEE! Catch the student, catch catch catch!",
			},
			Home:         vec2{X: 600, Y: 250},
			Speed:        npcWalkSpeed * 1.5,
			WanderRadius: 350,
			Erratic:      true,
		},
	}
}

var scaredToasts = []string{
	"That was terrifying!",
	"My heart is still racing!",
	"I need to be more careful...",
	"Too close! Way too close!",
	"I thought I was done for!",
	"Phew... that was scary!",
}

var galleonSpawnPoints = []vec2{
	{X: 150, Y: 200},
	{X: 400, Y: 150},
	{X: 250, Y: 400},
	{X: 500, Y: 350},
	{X: 100, Y: 500},
}
