package taxonomy

// defaultCategories is the built-in skill table used when no taxonomy file is
// configured. Each skill appears in exactly one category.
var defaultCategories = []Category{
	{Name: "languages", Skills: []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "php", "ruby",
		"go", "rust", "kotlin", "swift", "r", "matlab", "perl", "scala", "groovy",
		"objective-c", "dart", "elixir", "haskell", "clojure", "lua", "vb", "visual basic",
	}},
	{Name: "web", Skills: []string{
		"html", "css", "react", "vue", "angular", "flask", "django", "fastapi",
		"express", "nodejs", "node.js", "asp.net", "laravel", "spring", "spring boot",
		"wordpress", "shopify", "next.js", "nuxt", "svelte", "jquery", "bootstrap",
		"tailwind", "material ui", "webpack", "gulp", "grunt", "npm", "yarn", "pnpm",
	}},
	{Name: "mobile", Skills: []string{
		"android", "ios", "react native", "flutter", "xamarin",
	}},
	{Name: "databases", Skills: []string{
		"sql", "mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle",
		"elasticsearch", "cassandra", "dynamodb", "firebase", "couchdb",
		"mariadb", "memcached", "neo4j", "influxdb",
	}},
	{Name: "cloud_devops", Skills: []string{
		"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "gitlab", "github",
		"ci/cd", "terraform", "ansible", "puppet", "chef", "vagrant", "heroku",
		"aws lambda", "ec2", "s3", "rds", "cloudwatch", "cloudformation",
	}},
	{Name: "data_science", Skills: []string{
		"machine learning", "ml", "deep learning", "tensorflow", "pytorch", "keras",
		"scikit-learn", "pandas", "numpy", "matplotlib", "seaborn", "jupyter",
		"nltk", "spacy", "computer vision", "nlp", "neural networks", "opencv",
		"xgboost", "lightgbm", "catboost",
	}},
	{Name: "big_data", Skills: []string{
		"spark", "hadoop", "hive", "pig", "mapreduce", "kafka", "rabbitmq",
		"flink", "storm", "airflow",
	}},
	{Name: "version_control", Skills: []string{
		"git", "svn", "mercurial", "bitbucket",
	}},
	{Name: "testing", Skills: []string{
		"junit", "pytest", "unittest", "mocha", "jest", "selenium", "cypress",
		"testng", "rspec", "qunit", "karma", "robotframework",
	}},
	{Name: "apis", Skills: []string{
		"rest", "restful", "graphql", "soap", "microservices", "api",
		"grpc", "websocket", "openapi", "swagger",
	}},
	{Name: "collaboration", Skills: []string{
		"agile", "scrum", "kanban", "jira", "asana", "trello", "slack",
		"confluence", "scrum master",
	}},
	{Name: "platforms_tools", Skills: []string{
		"linux", "unix", "windows", "macos", "bash", "shell", "powershell",
		"apache", "nginx", "iis", "tomcat", "gunicorn", "uwsgi",
		"graphene", "marshmallow", "sqlalchemy", "orm",
	}},
	{Name: "security", Skills: []string{
		"security", "ssl", "oauth", "jwt", "authentication", "encryption",
	}},
}

// Default returns the built-in taxonomy. Each call builds a fresh value.
func Default() *Taxonomy {
	t, err := New(defaultCategories)
	if err != nil {
		// The built-in table is fixed; failing here is a programming error.
		panic(err)
	}
	return t
}
