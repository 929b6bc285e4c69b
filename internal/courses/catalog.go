package courses

import (
	"sort"
	"strings"

	"resume-insights/internal/contract"
)

// GenericSkillMatch tags fallback recommendations that do not address a specific skill.
const GenericSkillMatch = "General career development"

func video(title, platform, link, level, duration string) contract.CourseRecommendation {
	return contract.CourseRecommendation{Title: title, Platform: platform, Link: link, Level: level, Price: contract.PriceFree, Duration: duration, SourceType: contract.SourceYouTube}
}

func course(title, platform, link, level, price, duration string) contract.CourseRecommendation {
	return contract.CourseRecommendation{Title: title, Platform: platform, Link: link, Level: level, Price: price, Duration: duration, SourceType: contract.SourceOnlineCourse}
}

func cert(title, platform, link, level, price, duration string) contract.CourseRecommendation {
	return contract.CourseRecommendation{Title: title, Platform: platform, Link: link, Level: level, Price: price, Duration: duration, SourceType: contract.SourceCertification}
}

func tutorial(title, platform, link, level, duration string) contract.CourseRecommendation {
	return contract.CourseRecommendation{Title: title, Platform: platform, Link: link, Level: level, Price: contract.PriceFree, Duration: duration, SourceType: contract.SourceTutorial}
}

var skillCatalog = map[string][]contract.CourseRecommendation{
	"JavaScript": {
		course("The Complete JavaScript Course", "Udemy", "https://www.udemy.com/course/the-complete-javascript-course/", "Beginner", contract.PricePaid, "69 hours"),
		video("JavaScript Full Course for Beginners", "YouTube", "https://www.youtube.com/watch?v=PkZNo7MFNFg", "Beginner", "3.5 hours"),
		tutorial("JavaScript Algorithms and Data Structures", "freeCodeCamp", "https://www.freecodecamp.org/learn/javascript-algorithms-and-data-structures-v8/", "Beginner", "300 hours"),
		video("JavaScript Crash Course", "YouTube", "https://www.youtube.com/watch?v=hdI2bqOjy3c", "Beginner", "1.5 hours"),
	},
	"TypeScript": {
		video("TypeScript Course for Beginners", "YouTube", "https://www.youtube.com/watch?v=BwuLxPH8IDs", "Beginner", "3 hours"),
		tutorial("TypeScript Handbook", "typescriptlang.org", "https://www.typescriptlang.org/docs/handbook/intro.html", "Intermediate", "Self-paced"),
		course("Understanding TypeScript", "Udemy", "https://www.udemy.com/course/understanding-typescript/", "Intermediate", contract.PricePaid, "15 hours"),
	},
	"Python": {
		video("Python for Beginners - Full Course", "YouTube", "https://www.youtube.com/watch?v=rfscVS0vtbw", "Beginner", "4.5 hours"),
		course("Python for Everybody", "Coursera", "https://www.coursera.org/specializations/python", "Beginner", contract.PriceFreemium, "8 months"),
		course("100 Days of Code: Python", "Udemy", "https://www.udemy.com/course/100-days-of-code/", "Beginner", contract.PricePaid, "60 hours"),
	},
	"Java": {
		video("Java Tutorial for Beginners", "YouTube", "https://www.youtube.com/watch?v=eIrMbAQSU34", "Beginner", "2.5 hours"),
		course("Java Programming and Software Engineering Fundamentals", "Coursera", "https://www.coursera.org/specializations/java-programming", "Beginner", contract.PriceFreemium, "5 months"),
		cert("Oracle Certified Professional: Java SE Developer", "Oracle", "https://education.oracle.com/java-se-17-developer/pexam_1Z0-829", "Advanced", contract.PricePaid, "Exam"),
	},
	"Go": {
		tutorial("A Tour of Go", "go.dev", "https://go.dev/tour/", "Beginner", "Self-paced"),
		video("Learn Go Programming - Golang Tutorial", "YouTube", "https://www.youtube.com/watch?v=YS4e4q9oBaU", "Beginner", "7 hours"),
		course("Programming with Google Go", "Coursera", "https://www.coursera.org/specializations/google-golang", "Intermediate", contract.PriceFreemium, "3 months"),
	},
	"React": {
		video("React Course - Beginner's Tutorial", "YouTube", "https://www.youtube.com/watch?v=bMknfKXIFA8", "Beginner", "12 hours"),
		tutorial("React Quick Start", "react.dev", "https://react.dev/learn", "Beginner", "Self-paced"),
		course("React - The Complete Guide", "Udemy", "https://www.udemy.com/course/react-the-complete-guide-incl-redux/", "Intermediate", contract.PricePaid, "68 hours"),
	},
	"Node.js": {
		video("Node.js and Express.js - Full Course", "YouTube", "https://www.youtube.com/watch?v=Oe421EPjeBE", "Beginner", "8 hours"),
		course("The Complete Node.js Developer Course", "Udemy", "https://www.udemy.com/course/the-complete-nodejs-developer-course-2/", "Intermediate", contract.PricePaid, "35 hours"),
	},
	"SQL": {
		video("SQL Tutorial - Full Database Course", "YouTube", "https://www.youtube.com/watch?v=HXV3zeQKqGY", "Beginner", "4 hours"),
		tutorial("SQLBolt Interactive Lessons", "SQLBolt", "https://sqlbolt.com/", "Beginner", "Self-paced"),
		course("Databases and SQL for Data Science", "Coursera", "https://www.coursera.org/learn/sql-data-science", "Beginner", contract.PriceFreemium, "20 hours"),
	},
	"Docker": {
		video("Docker Tutorial for Beginners", "YouTube", "https://www.youtube.com/watch?v=fqMOX6JJhGo", "Beginner", "2 hours"),
		tutorial("Docker Getting Started", "docs.docker.com", "https://docs.docker.com/get-started/", "Beginner", "Self-paced"),
		course("Docker Mastery", "Udemy", "https://www.udemy.com/course/docker-mastery/", "Intermediate", contract.PricePaid, "21 hours"),
	},
	"Kubernetes": {
		video("Kubernetes Course - Full Beginners Tutorial", "YouTube", "https://www.youtube.com/watch?v=d6WC5n9G_sM", "Beginner", "4 hours"),
		course("Introduction to Kubernetes", "edX", "https://www.edx.org/learn/kubernetes/the-linux-foundation-introduction-to-kubernetes", "Beginner", contract.PriceFreemium, "14 weeks"),
		cert("Certified Kubernetes Administrator", "Linux Foundation", "https://training.linuxfoundation.org/certification/certified-kubernetes-administrator-cka/", "Advanced", contract.PricePaid, "Exam"),
	},
	"AWS": {
		video("AWS Certified Cloud Practitioner Training", "YouTube", "https://www.youtube.com/watch?v=SOTamWNgDKc", "Beginner", "14 hours"),
		course("AWS Cloud Practitioner Essentials", "AWS Skill Builder", "https://explore.skillbuilder.aws/learn/course/134", "Beginner", contract.PriceFree, "6 hours"),
		cert("AWS Certified Solutions Architect - Associate", "Amazon Web Services", "https://aws.amazon.com/certification/certified-solutions-architect-associate/", "Intermediate", contract.PricePaid, "Exam"),
	},
	"Azure": {
		video("Azure Fundamentals AZ-900 Full Course", "YouTube", "https://www.youtube.com/watch?v=NKEFWyqJ5XA", "Beginner", "3.5 hours"),
		course("Microsoft Azure Fundamentals", "Microsoft Learn", "https://learn.microsoft.com/en-us/training/paths/microsoft-azure-fundamentals-describe-cloud-concepts/", "Beginner", contract.PriceFree, "Self-paced"),
		cert("Microsoft Certified: Azure Administrator Associate", "Microsoft", "https://learn.microsoft.com/en-us/credentials/certifications/azure-administrator/", "Intermediate", contract.PricePaid, "Exam"),
	},
	"Git": {
		video("Git and GitHub for Beginners - Crash Course", "YouTube", "https://www.youtube.com/watch?v=RGOj5yH7evk", "Beginner", "1 hour"),
		tutorial("Pro Git Book", "git-scm.com", "https://git-scm.com/book/en/v2", "Intermediate", "Self-paced"),
	},
	"CI/CD": {
		video("DevOps CI/CD Explained", "YouTube", "https://www.youtube.com/watch?v=scEDHsr3APg", "Beginner", "20 minutes"),
		tutorial("GitHub Actions Quickstart", "GitHub Docs", "https://docs.github.com/en/actions/quickstart", "Beginner", "Self-paced"),
		course("Continuous Integration and Delivery", "Coursera", "https://www.coursera.org/learn/continuous-integration-and-continuous-delivery-ci-cd", "Intermediate", contract.PriceFreemium, "15 hours"),
	},
	"Linux": {
		video("Linux Operating System - Crash Course", "YouTube", "https://www.youtube.com/watch?v=ROjZy1WbCIA", "Beginner", "2.5 hours"),
		course("Introduction to Linux", "edX", "https://www.edx.org/learn/linux/the-linux-foundation-introduction-to-linux", "Beginner", contract.PriceFreemium, "14 weeks"),
	},
	"GraphQL": {
		video("GraphQL Full Course", "YouTube", "https://www.youtube.com/watch?v=ed8SzALpx1Q", "Beginner", "4 hours"),
		tutorial("Learn GraphQL", "graphql.org", "https://graphql.org/learn/", "Beginner", "Self-paced"),
	},
	"Machine Learning": {
		course("Machine Learning Specialization", "Coursera", "https://www.coursera.org/specializations/machine-learning-introduction", "Beginner", contract.PriceFreemium, "2 months"),
		video("Machine Learning for Everybody", "YouTube", "https://www.youtube.com/watch?v=i_LwzRVP7bg", "Beginner", "4 hours"),
		tutorial("Machine Learning Crash Course", "Google Developers", "https://developers.google.com/machine-learning/crash-course", "Beginner", "15 hours"),
	},
	"Data Analysis": {
		video("Data Analysis with Python - Full Course", "YouTube", "https://www.youtube.com/watch?v=r-uOLxNrNk8", "Beginner", "4.5 hours"),
		cert("Google Data Analytics Professional Certificate", "Coursera", "https://www.coursera.org/professional-certificates/google-data-analytics", "Beginner", contract.PriceFreemium, "6 months"),
	},
	"Excel": {
		video("Excel Tutorial for Beginners", "YouTube", "https://www.youtube.com/watch?v=Vl0H-qTclOg", "Beginner", "3 hours"),
		course("Excel Skills for Business", "Coursera", "https://www.coursera.org/specializations/excel", "Beginner", contract.PriceFreemium, "6 months"),
	},
	"UI/UX Design": {
		video("UI/UX Design Tutorial", "YouTube", "https://www.youtube.com/watch?v=c9Wg6Cb_YlU", "Beginner", "1.5 hours"),
		cert("Google UX Design Professional Certificate", "Coursera", "https://www.coursera.org/professional-certificates/google-ux-design", "Beginner", contract.PriceFreemium, "6 months"),
	},
	"Cybersecurity": {
		video("Cyber Security Full Course for Beginners", "YouTube", "https://www.youtube.com/watch?v=U_P23SqJaDc", "Beginner", "11 hours"),
		cert("CompTIA Security+", "CompTIA", "https://www.comptia.org/certifications/security", "Intermediate", contract.PricePaid, "Exam"),
	},
	"Project Management": {
		cert("Google Project Management Professional Certificate", "Coursera", "https://www.coursera.org/professional-certificates/google-project-management", "Beginner", contract.PriceFreemium, "6 months"),
		video("Project Management Full Course", "YouTube", "https://www.youtube.com/watch?v=uWPIsaYpY7U", "Beginner", "2 hours"),
		cert("Project Management Professional (PMP)", "PMI", "https://www.pmi.org/certifications/project-management-pmp", "Advanced", contract.PricePaid, "Exam"),
	},
	"Agile": {
		video("Agile Project Management Explained", "YouTube", "https://www.youtube.com/watch?v=thsFsPnUHRA", "Beginner", "1 hour"),
		tutorial("The Scrum Guide", "scrumguides.org", "https://scrumguides.org/scrum-guide.html", "Beginner", "1 hour"),
		cert("Professional Scrum Master I", "Scrum.org", "https://www.scrum.org/assessments/professional-scrum-master-i-certification", "Intermediate", contract.PricePaid, "Exam"),
	},
	"Communication": {
		course("Improving Communication Skills", "Coursera", "https://www.coursera.org/learn/wharton-communication-skills", "Beginner", contract.PriceFreemium, "9 hours"),
		video("How to Speak", "YouTube", "https://www.youtube.com/watch?v=Unzc731iCUY", "Beginner", "1 hour"),
	},
	"Leadership": {
		course("Inspiring and Motivating Individuals", "Coursera", "https://www.coursera.org/learn/motivate-people-teams", "Intermediate", contract.PriceFreemium, "10 hours"),
		video("Leadership Skills Full Course", "YouTube", "https://www.youtube.com/watch?v=q3ppADfZ_Qo", "Beginner", "2 hours"),
	},
}

var genericResources = []contract.CourseRecommendation{
	video("How to Write a Resume That Stands Out", "YouTube", "https://www.youtube.com/watch?v=Tt08KmFfIYQ", "Beginner", "20 minutes"),
	course("Learning How to Learn", "Coursera", "https://www.coursera.org/learn/learning-how-to-learn", "Beginner", contract.PriceFreemium, "15 hours"),
	tutorial("Technical Interview Handbook", "techinterviewhandbook.org", "https://www.techinterviewhandbook.org/", "Intermediate", "Self-paced"),
	course("Career Essentials in Professional Development", "LinkedIn Learning", "https://www.linkedin.com/learning/paths/career-essentials-in-professional-development", "Beginner", contract.PriceFreemium, "6 hours"),
}

type catalogEntry struct {
	key     string
	tokens  string
	entries []contract.CourseRecommendation
}

// catalogIndex is the catalog sorted by normalized key with price-ordered entries.
var catalogIndex = buildIndex(skillCatalog)

// catalogSize is the number of distinct entries Match can ever return.
var catalogSize = countEntries(skillCatalog) + len(genericResources)

func countEntries(src map[string][]contract.CourseRecommendation) int {
	n := 0
	for _, entries := range src {
		n += len(entries)
	}
	return n
}

func buildIndex(src map[string][]contract.CourseRecommendation) []catalogEntry {
	out := make([]catalogEntry, 0, len(src))
	for key, entries := range src {
		sorted := append([]contract.CourseRecommendation(nil), entries...)
		sortByPrice(sorted)
		out = append(out, catalogEntry{key: key, tokens: tokenize(key), entries: sorted})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].tokens < out[j].tokens
	})
	return out
}

func lookupExact(skill string) (catalogEntry, bool) {
	tokens := tokenize(skill)
	for _, entry := range catalogIndex {
		if entry.tokens == tokens {
			return entry, true
		}
	}
	return catalogEntry{}, false
}

func priceRank(price string) int {
	switch strings.ToLower(strings.TrimSpace(price)) {
	case "free":
		return 0
	case "freemium":
		return 1
	case "paid":
		return 2
	default:
		return 3
	}
}

func sortByPrice(items []contract.CourseRecommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		return priceRank(items[i].Price) < priceRank(items[j].Price)
	})
}
