package questionbank

import "github.com/abhisek/studyquest/internal/quiz"

func scienceTopics() []string {
	return []string{"animals", "plants", "space"}
}

// scienceQuestions is the curated static set. IDs are stable so attempts can
// reference them across runs.
var scienceQuestions = []quiz.Question{
	{
		ID: "sci-ani-e1", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Easy,
		Prompt:  "Which animal says 'moo'?",
		Options: []string{"Dog", "Cow", "Cat", "Duck"}, Correct: 1,
		Explanation: "Cows moo.", Hint: "It lives on a farm and gives milk.",
	},
	{
		ID: "sci-ani-e2", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Easy,
		Prompt:  "How many legs does a spider have?",
		Options: []string{"4", "6", "8", "10"}, Correct: 2,
		Explanation: "Spiders have eight legs.", Hint: "More than an insect.",
	},
	{
		ID: "sci-ani-m1", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Medium,
		Prompt:  "Which of these animals is a mammal?",
		Options: []string{"Shark", "Dolphin", "Octopus", "Salmon"}, Correct: 1,
		Explanation: "Dolphins breathe air and feed their young milk.", Hint: "It has to come up for air.",
	},
	{
		ID: "sci-ani-m2", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Medium,
		Prompt:  "What do you call an animal that eats only plants?",
		Options: []string{"Carnivore", "Omnivore", "Herbivore", "Insectivore"}, Correct: 2,
		Explanation: "Herbivores eat only plants.", Hint: "'Herb' is a clue.",
	},
	{
		ID: "sci-ani-h1", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Hard,
		Prompt:  "Which process lets a caterpillar become a butterfly?",
		Options: []string{"Photosynthesis", "Metamorphosis", "Hibernation", "Migration"}, Correct: 1,
		Explanation: "Metamorphosis transforms the caterpillar inside its chrysalis.", Hint: "A complete change of body form.",
	},
	{
		ID: "sci-ani-h2", Subject: SubjectScience, Topic: "animals", Difficulty: quiz.Hard,
		Prompt:  "Which animal group has a backbone, lays eggs, and breathes with gills its whole life?",
		Options: []string{"Amphibians", "Reptiles", "Fish", "Birds"}, Correct: 2,
		Explanation: "Fish keep their gills for life.", Hint: "Amphibians lose their gills as adults.",
	},
	{
		ID: "sci-pla-e1", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Easy,
		Prompt:  "What do plants need to grow?",
		Options: []string{"Sunlight and water", "Only darkness", "Only wind", "Nothing"}, Correct: 0,
		Explanation: "Plants need sunlight and water to grow.", Hint: "Think about what you give a garden.",
	},
	{
		ID: "sci-pla-e2", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Easy,
		Prompt:  "Which part of a plant grows under the ground?",
		Options: []string{"Leaf", "Flower", "Root", "Stem"}, Correct: 2,
		Explanation: "Roots grow underground and take in water.", Hint: "It anchors the plant.",
	},
	{
		ID: "sci-pla-m1", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Medium,
		Prompt:  "What gas do plants release during photosynthesis?",
		Options: []string{"Carbon dioxide", "Oxygen", "Nitrogen", "Hydrogen"}, Correct: 1,
		Explanation: "Plants release oxygen when they make food.", Hint: "The gas we breathe in.",
	},
	{
		ID: "sci-pla-m2", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Medium,
		Prompt:  "Which part of the plant makes seeds?",
		Options: []string{"Root", "Stem", "Leaf", "Flower"}, Correct: 3,
		Explanation: "Flowers are the seed-making part of the plant.", Hint: "It is the colorful part.",
	},
	{
		ID: "sci-pla-h1", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Hard,
		Prompt:  "What is the green pigment that captures light energy called?",
		Options: []string{"Chlorophyll", "Carotene", "Keratin", "Melanin"}, Correct: 0,
		Explanation: "Chlorophyll absorbs light for photosynthesis.", Hint: "It gives leaves their color.",
	},
	{
		ID: "sci-pla-h2", Subject: SubjectScience, Topic: "plants", Difficulty: quiz.Hard,
		Prompt:  "Through which tiny openings do leaves exchange gases?",
		Options: []string{"Stomata", "Xylem", "Phloem", "Cuticles"}, Correct: 0,
		Explanation: "Stomata open and close to let gases in and out.", Hint: "Mostly on the underside of leaves.",
	},
	{
		ID: "sci-spa-e1", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Easy,
		Prompt:  "What do we call the star at the center of our solar system?",
		Options: []string{"The Moon", "The Sun", "Mars", "A comet"}, Correct: 1,
		Explanation: "The Sun is our star.", Hint: "It lights up the day.",
	},
	{
		ID: "sci-spa-e2", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Easy,
		Prompt:  "Which object orbits the Earth?",
		Options: []string{"The Sun", "The Moon", "Jupiter", "A star"}, Correct: 1,
		Explanation: "The Moon orbits the Earth about once a month.", Hint: "You can see it at night.",
	},
	{
		ID: "sci-spa-m1", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Medium,
		Prompt:  "Which planet is known as the Red Planet?",
		Options: []string{"Venus", "Mars", "Saturn", "Mercury"}, Correct: 1,
		Explanation: "Iron oxide dust makes Mars look red.", Hint: "It is Earth's outer neighbor.",
	},
	{
		ID: "sci-spa-m2", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Medium,
		Prompt:  "How long does the Earth take to orbit the Sun once?",
		Options: []string{"One day", "One month", "One year", "Ten years"}, Correct: 2,
		Explanation: "One full orbit takes about 365 days.", Hint: "It is why we have a calendar.",
	},
	{
		ID: "sci-spa-h1", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Hard,
		Prompt:  "What is the largest planet in our solar system?",
		Options: []string{"Saturn", "Neptune", "Jupiter", "Uranus"}, Correct: 2,
		Explanation: "Jupiter is larger than all the other planets combined.", Hint: "It has a Great Red Spot.",
	},
	{
		ID: "sci-spa-h2", Subject: SubjectScience, Topic: "space", Difficulty: quiz.Hard,
		Prompt:  "What force keeps the planets in orbit around the Sun?",
		Options: []string{"Magnetism", "Gravity", "Friction", "Electricity"}, Correct: 1,
		Explanation: "The Sun's gravity holds the planets in their orbits.", Hint: "The same force that pulls you down.",
	},
}
