package parser

import (
	"regexp"
	"sort"
	"strings"
)

// 技能词表按类目维护,条目一律小写,匹配时不区分大小写并保留原文写法

var programmingLanguageSkills = []string{
	"python", "java", "javascript", "typescript", "c", "c++", "c#", "go", "golang", "ruby",
	"php", "perl", "swift", "kotlin", "scala", "rust", "dart", "objective-c", "r", "matlab",
	"groovy", "bash", "shell", "powershell", "vba", "sql", "plsql", "cobol", "fortran", "haskell",
	"assembly", "pascal", "lua", "erlang", "clojure", "f#", "scheme", "prolog", "julia", "elixir",
}

var webDevelopmentSkills = []string{
	"html", "css", "sass", "scss", "less", "bootstrap", "tailwind", "javascript", "typescript",
	"jquery", "react", "angular", "vue", "svelte", "next.js", "nuxt", "express", "node.js",
	"node", "npm", "webpack", "vite", "babel", "redux", "graphql", "rest", "soap", "xml", "json",
	"ajax", "gatsby", "three.js", "webgl", "d3.js", "chart.js", "dom", "wordpress", "drupal",
	"joomla", "magento", "shopify", "web development", "frontend", "front-end", "backend", "back-end",
	"full-stack", "fullstack", "responsive design", "progressive web app", "pwa", "web socket",
	"api", "oauth", "jwt", "web security", "htmx", "alpinejs", "material ui", "chakra ui", "antd",
	"django", "flask",
}

var mobileDevelopmentSkills = []string{
	"android", "ios", "swift", "objective-c", "kotlin", "java", "react native", "flutter", "dart",
	"xamarin", "ionic", "cordova", "phonegap", "android studio", "xcode", "mobile development",
	"app development", "ui/ux", "ui design", "ux design", "mobile ui", "app ui",
}

var databaseSkills = []string{
	"sql", "mysql", "postgresql", "postgres", "oracle", "sql server", "sqlite", "mongodb", "nosql",
	"redis", "cassandra", "couchbase", "dynamodb", "firebase", "neo4j", "mariadb", "db2", "hbase",
	"elasticsearch", "solr", "database design", "database architecture", "data modeling", "etl",
	"rdbms", "data warehousing", "olap", "oltp", "database administration", "dba", "database tuning",
	"indexing", "query optimization", "orm", "entity framework", "hibernate", "sequelize", "prisma",
	"schema design", "database migration",
}

var devopsCloudSkills = []string{
	"aws", "amazon web services", "ec2", "s3", "lambda", "azure", "microsoft azure", "google cloud",
	"gcp", "cloud computing", "docker", "kubernetes", "k8s", "jenkins", "circleci", "travis", "ci/cd",
	"terraform", "ansible", "puppet", "chef", "infrastructure as code", "iac", "git", "github",
	"gitlab", "bitbucket", "devops", "devsecops", "mlops", "cloud architecture", "microservices",
	"serverless", "containerization", "virtualization", "vmware", "vagrant", "heroku", "digitalocean",
	"monitoring", "logging", "prometheus", "grafana", "elk stack", "load balancing", "high availability",
	"disaster recovery", "backup", "linux", "unix", "windows server", "nginx", "apache", "iis",
}

var aiMlDataSkills = []string{
	"machine learning", "deep learning", "artificial intelligence", "ai", "ml", "neural network",
	"tensorflow", "keras", "pytorch", "scikit-learn", "pandas", "numpy", "scipy", "data science",
	"data analysis", "data mining", "data visualization", "natural language processing", "nlp",
	"computer vision", "opencv", "image processing", "feature engineering", "statistical analysis",
	"regression", "classification", "clustering", "pca", "dimensionality reduction", "reinforcement learning",
	"supervised learning", "unsupervised learning", "predictive modeling", "time series analysis",
	"a/b testing", "jupyter", "matplotlib", "seaborn", "tableau", "power bi", "looker", "big data",
	"hadoop", "spark", "kafka", "airflow", "etl", "data pipeline", "data engineering", "data warehouse",
	"data lake", "data preprocessing", "data cleaning", "statistical modeling", "bayesian", "r",
}

var cybersecuritySkills = []string{
	"cybersecurity", "information security", "infosec", "network security", "application security",
	"appsec", "penetration testing", "pen testing", "ethical hacking", "vulnerability assessment",
	"security audit", "compliance", "encryption", "cryptography", "firewall", "vpn", "identity management",
	"authentication", "authorization", "oauth", "openid", "saml", "sso", "intrusion detection", "ids",
	"intrusion prevention", "ips", "siem", "security monitoring", "incident response", "forensics",
	"malware analysis", "threat intelligence", "security operations", "secops", "risk assessment",
	"disaster recovery", "business continuity", "web application security", "owasp", "xss", "csrf",
	"sql injection", "security testing", "zero trust", "devsecops",
}

// softSkillStems 软技能词干,点号代表可选的空格或连字符
var softSkillStems = []string{
	"communication", "teamwork", "problem.solving", "critical.thinking", "creativity", "adaptability",
	"leadership", "time.management", "organization", "project.management", "analytical", "detail.oriented",
	"decision.making", "emotional.intelligence", "negotiation", "conflict.resolution", "presentation",
	"public.speaking", "writing", "customer.service", "collaboration", "flexibility", "reliability",
	"responsibility", "self.motivation", "work.ethic", "interpersonal", "active.listening", "empathy",
	"patience", "strategic.thinking", "research", "persuasion", "networking", "multitasking", "prioritization",
	"team.building", "mentoring", "coaching", "feedback", "cultural.awareness", "diversity", "inclusion",
}

var toolsSoftwareSkills = []string{
	"microsoft office", "office 365", "excel", "word", "powerpoint", "outlook", "access", "visio",
	"adobe", "photoshop", "illustrator", "indesign", "after effects", "premiere pro", "acrobat",
	"lightroom", "xd", "figma", "sketch", "invision", "zeplin", "trello", "jira", "asana", "slack",
	"teams", "zoom", "skype", "basecamp", "confluence", "notion", "airtable", "quickbooks", "salesforce",
	"hubspot", "marketo", "mailchimp", "sap", "oracle", "zendesk", "servicenow", "autodesk", "autocad",
	"revit", "3ds max", "maya", "blender", "solidworks", "fusion 360", "unity", "unreal engine",
	"git", "docker", "jenkins", "aws",
}

// techSkillCategories 技术类目,顺序固定以保证扫描结果可复现
var techSkillCategories = []struct {
	name    string
	entries []string
}{
	{"programming_languages", programmingLanguageSkills},
	{"web_development", webDevelopmentSkills},
	{"mobile_development", mobileDevelopmentSkills},
	{"databases", databaseSkills},
	{"devops_cloud", devopsCloudSkills},
	{"ai_ml_data", aiMlDataSkills},
	{"cybersecurity", cybersecuritySkills},
}

// skillMatcher 单个类目的词表匹配器
// 首尾是非单词字符的条目(c++、c#)走手工扫描,\b 对它们不生效
type skillMatcher struct {
	re       *regexp.Regexp
	literals []string
}

// newSkillMatcher 编译词表,长词在前避免被短词遮蔽(sql server 优先于 sql)
func newSkillMatcher(entries []string) *skillMatcher {
	m := &skillMatcher{}
	var alts []string
	for _, entry := range entries {
		if wordEdged(entry) {
			alts = append(alts, regexp.QuoteMeta(entry))
		} else {
			m.literals = append(m.literals, entry)
		}
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	m.re = regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
	return m
}

// newSoftSkillMatcher 软技能允许词干后带 ing/ed 变形
func newSoftSkillMatcher(stems []string) *skillMatcher {
	alts := make([]string, len(stems))
	for i, stem := range stems {
		alts[i] = strings.ReplaceAll(stem, ".", `[\s-]?`)
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return &skillMatcher{
		re: regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)(?:ing|ed)?\b`),
	}
}

// find 返回命中的技能,保留原文写法,排序去重
func (m *skillMatcher) find(text string) []string {
	seen := map[string]struct{}{}
	found := []string{}
	for _, match := range m.re.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[match[1]]; !ok {
			seen[match[1]] = struct{}{}
			found = append(found, match[1])
		}
	}
	for _, lit := range m.literals {
		if hit := scanLiteralSkill(text, lit); hit != "" {
			if _, ok := seen[hit]; !ok {
				seen[hit] = struct{}{}
				found = append(found, hit)
			}
		}
	}
	sort.Strings(found)
	return found
}

// scanLiteralSkill 大小写不敏感地找词表条目,两侧都不能是单词字符
func scanLiteralSkill(text, skill string) string {
	lowerText := strings.ToLower(text)
	needle := strings.ToLower(skill)
	for i := 0; i+len(needle) <= len(lowerText); {
		j := strings.Index(lowerText[i:], needle)
		if j < 0 {
			return ""
		}
		pos := i + j
		end := pos + len(needle)
		if !wordCharAt(text, pos-1) && !wordCharAt(text, end) {
			return text[pos:end]
		}
		i = pos + 1
	}
	return ""
}

func wordEdged(entry string) bool {
	return isWordChar(entry[0]) && isWordChar(entry[len(entry)-1])
}

func wordCharAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	return isWordChar(text[i])
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
