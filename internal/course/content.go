package course

// Default is the ten-week AI Foundations catalog. Module IDs and simulation
// block indices are stable: they key stored progress and must not change
// between releases.
var Default = Catalog{
	{
		ID:        "week-1",
		WeekRange: "Week 1",
		Title:     "What Actually IS Artificial Intelligence?",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "Which statement best describes machine learning?",
				Options:      []string{"Programs that follow hand-written rules", "Systems that learn patterns from examples", "Databases that store facts", "Robots with cameras"},
				CorrectIndex: 1,
				Explanation:  "Machine learning systems improve from data instead of being explicitly programmed for every case.",
			},
			{
				Prompt:       "A spam filter that improves as users flag messages is an example of:",
				Options:      []string{"A lookup table", "Supervised learning", "A random process", "Manual curation"},
				CorrectIndex: 1,
				Explanation:  "Flagged messages act as labeled training examples.",
			},
		},
	},
	{
		ID:        "week-2",
		WeekRange: "Week 2",
		Title:     "Data: The Food for the Brain",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "Why does training data quality matter more than model size in many cases?",
				Options:      []string{"It doesn't", "Models reproduce the patterns, including flaws, of their data", "Bigger models ignore their data", "Data is cheaper"},
				CorrectIndex: 1,
				Explanation:  "A model can only be as good as what it learned from.",
			},
			{
				Prompt:       "A dataset of loan approvals from one region will likely produce a model that:",
				Options:      []string{"Generalizes worldwide", "Reflects that region's historical decisions", "Is perfectly fair", "Needs no validation"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-3",
		WeekRange: "Week 3",
		Title:     `Computer Vision: How Computers "See"`,
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "To a computer, an image is fundamentally:",
				Options:      []string{"A picture", "A grid of numbers", "A sound wave", "A text file"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Why can a vision model confuse a chihuahua with a muffin?",
				Options:      []string{"It is broken", "It matches statistical patterns of pixels, not concepts", "Muffins move", "Cameras lie"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-4",
		WeekRange: "Week 4",
		Title:     "NLP: How Computers Read & Write",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "Large language models generate text by:",
				Options:      []string{"Copying from a database", "Predicting likely next tokens", "Understanding like humans", "Random selection"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "A token is best described as:",
				Options:      []string{"A coin", "A chunk of text the model processes", "A password", "An image patch"},
				CorrectIndex: 1,
			},
		},
		SimulationBlocks: []int{3},
	},
	{
		ID:        "week-5",
		WeekRange: "Week 5",
		Title:     "Hallucinations: When AI Lies",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "An AI hallucination is:",
				Options:      []string{"A visual glitch", "Confidently stated false output", "A crashed model", "Slow responses"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "The best defense against hallucinated facts is:",
				Options:      []string{"Trusting longer answers", "Verifying against primary sources", "Asking twice", "Using bigger fonts"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-6",
		WeekRange: "Week 6",
		Title:     "Bias & Ethics",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "Algorithmic bias usually originates from:",
				Options:      []string{"Malicious code", "Patterns in historical training data", "Hardware faults", "User typos"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "A hiring model trained on past hires at a biased company will:",
				Options:      []string{"Fix the bias", "Tend to repeat the bias", "Hire randomly", "Refuse to run"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-7",
		WeekRange: "Week 7",
		Title:     "Generative AI: Creating, Not Just Thinking",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "What distinguishes generative models from classifiers?",
				Options:      []string{"They are smaller", "They produce new content rather than labels", "They need no data", "They are always accurate"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Diffusion image models work by:",
				Options:      []string{"Searching the web", "Iteratively denoising toward an image", "Copying stock photos", "Tracing outlines"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-8",
		WeekRange: "Week 8",
		Title:     "How to Talk to Robots (Prompt Engineering)",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "Which prompt is most likely to get a useful answer?",
				Options:      []string{"\"Write something\"", "A prompt with role, context, and desired format", "All caps", "One emoji"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Giving the model worked examples in the prompt is called:",
				Options:      []string{"Fine-tuning", "Few-shot prompting", "Tokenizing", "Caching"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-9",
		WeekRange: "Week 9",
		Title:     "AI Agents: From Talking to Doing",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "An AI agent differs from a chatbot because it can:",
				Options:      []string{"Use more words", "Take actions with tools toward a goal", "Run offline", "Avoid errors"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Why do agents need guardrails?",
				Options:      []string{"They don't", "Autonomous actions can have real-world side effects", "To run faster", "For styling"},
				CorrectIndex: 1,
			},
		},
	},
	{
		ID:        "week-10",
		WeekRange: "Week 10",
		Title:     "The Future: You + AI",
		QuizQuestions: []QuizQuestion{
			{
				Prompt:       "The most durable skill in an AI-shaped job market is:",
				Options:      []string{"Memorizing syntax", "Judgment about when and how to apply AI", "Typing speed", "Avoiding AI entirely"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Human oversight of AI systems is needed because:",
				Options:      []string{"Regulations say so, only", "Models optimize proxies that can diverge from intent", "Humans are slower", "It is traditional"},
				CorrectIndex: 1,
			},
		},
	},
}
