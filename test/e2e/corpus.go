// Package e2e provides end-to-end tests over a realistic assessment catalog.
package e2e

import "github.com/skillsift/skillsift/internal/models"

// Corpus is a small but realistic assessment catalog covering the major
// test types, used by the E2E tests to check that queries surface the
// expected items.
var Corpus = []models.Assessment{
	{
		ID:          "verify-numerical",
		Name:        "Verify Numerical Reasoning",
		Description: "Measures the ability to analyze numerical data, tables and charts and draw logical conclusions. Commonly used for graduate, analyst and finance roles.",
		Type:        "Cognitive Ability",
		URL:         "https://example.com/catalog/verify-numerical",
	},
	{
		ID:          "verify-verbal",
		Name:        "Verify Verbal Reasoning",
		Description: "Measures comprehension and evaluation of written information, identifying whether statements follow from a passage.",
		Type:        "Cognitive Ability",
		URL:         "https://example.com/catalog/verify-verbal",
	},
	{
		ID:          "verify-inductive",
		Name:        "Verify Inductive Reasoning",
		Description: "Measures abstract pattern recognition and logical rule discovery with diagrammatic sequences.",
		Type:        "Cognitive Ability",
		URL:         "https://example.com/catalog/verify-inductive",
	},
	{
		ID:          "opq32",
		Name:        "Occupational Personality Questionnaire (OPQ32)",
		Description: "Assesses workplace behavioral style across 32 dimensions including relationships with people, thinking style and feelings and emotions.",
		Type:        "Personality & Behavior",
		URL:         "https://example.com/catalog/opq32",
	},
	{
		ID:          "motivation",
		Name:        "Motivation Questionnaire",
		Description: "Identifies the situations and factors that increase or decrease an individual's motivation and energy at work.",
		Type:        "Personality & Behavior",
		URL:         "https://example.com/catalog/motivation",
	},
	{
		ID:          "java-skill",
		Name:        "Java Programming Test",
		Description: "Assesses knowledge of core Java syntax, object oriented design, collections and concurrency for software engineering roles.",
		Type:        "Knowledge & Skills",
		URL:         "https://example.com/catalog/java-skill",
	},
	{
		ID:          "python-skill",
		Name:        "Python Programming Test",
		Description: "Assesses Python programming proficiency including data structures, functions and standard library usage for developer and data roles.",
		Type:        "Knowledge & Skills",
		URL:         "https://example.com/catalog/python-skill",
	},
	{
		ID:          "sql-skill",
		Name:        "SQL Server Test",
		Description: "Assesses ability to write and optimize SQL queries, joins and aggregations against relational databases.",
		Type:        "Knowledge & Skills",
		URL:         "https://example.com/catalog/sql-skill",
	},
	{
		ID:          "contact-center",
		Name:        "Contact Center Simulation",
		Description: "Simulates customer interactions to evaluate service orientation, multitasking and communication for contact center agents.",
		Type:        "Simulation",
		URL:         "https://example.com/catalog/contact-center",
	},
	{
		ID:          "sales-sjt",
		Name:        "Sales Situational Judgement Test",
		Description: "Presents realistic sales scenarios to measure judgement, customer focus and persuasion in sales roles.",
		Type:        "Situational Judgement",
		URL:         "https://example.com/catalog/sales-sjt",
	},
	{
		ID:          "management-sjt",
		Name:        "Manager Situational Judgement Test",
		Description: "Measures judgement in people management scenarios such as delegation, feedback and conflict resolution.",
		Type:        "Situational Judgement",
		URL:         "https://example.com/catalog/management-sjt",
	},
	{
		ID:          "workplace-safety",
		Name:        "Workplace Safety Solution",
		Description: "Evaluates safety awareness, rule following and risk reduction behaviors for industrial and operational roles.",
		Type:        "Personality & Behavior",
		URL:         "https://example.com/catalog/workplace-safety",
	},
}
