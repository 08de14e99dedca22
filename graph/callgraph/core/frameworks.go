package core

import "strings"

// Framework describes a known library/framework recognized by import prefix,
// used to classify call sites and imports during pattern detection (e.g. to
// tell a Django ORM call apart from an arbitrary user module named "db").
type Framework struct {
	Name        string
	Prefixes    []string // fully-qualified import prefixes, e.g. "django."
	Category    string
	Description string
}

// LoadFrameworks returns the built-in framework recognition table.
func LoadFrameworks() []Framework {
	return []Framework{
		{"Django", []string{"django.", "rest_framework."}, "web", "Python web framework and its REST toolkit"},
		{"Flask", []string{"flask."}, "web", "WSGI micro web framework"},
		{"FastAPI", []string{"fastapi."}, "web", "ASGI web framework with typed request/response models"},
		{"Pyramid", []string{"pyramid."}, "web", "General-purpose WSGI web framework"},
		{"Tornado", []string{"tornado."}, "web", "Asynchronous web framework and networking library"},
		{"Bottle", []string{"bottle."}, "web", "Single-file WSGI micro framework"},
		{"Starlette", []string{"starlette."}, "web", "ASGI toolkit underlying FastAPI"},
		{"Sanic", []string{"sanic."}, "web", "Async web framework built on uvloop"},
		{"CherryPy", []string{"cherrypy."}, "web", "Minimalist object-oriented web framework"},
		{"Falcon", []string{"falcon."}, "web", "Minimalist API framework for microservices"},

		{"pytest", []string{"pytest.", "_pytest."}, "testing", "Test framework and its internal fixture machinery"},
		{"unittest", []string{"unittest.", "unittest.mock."}, "testing", "Standard library test framework and mocking"},
		{"nose2", []string{"nose2."}, "testing", "Successor to the nose test runner"},
		{"hypothesis", []string{"hypothesis."}, "testing", "Property-based testing library"},
		{"tox", []string{"tox."}, "testing", "Test environment orchestration"},
		{"coverage", []string{"coverage."}, "testing", "Code coverage measurement"},
		{"factory_boy", []string{"factory."}, "testing", "Test fixture replacement via factories"},

		{"requests", []string{"requests."}, "http", "Synchronous HTTP client library"},
		{"httpx", []string{"httpx."}, "http", "Sync/async HTTP client library"},
		{"urllib3", []string{"urllib3."}, "http", "Low-level connection-pooled HTTP client"},
		{"aiohttp", []string{"aiohttp."}, "http", "Asynchronous HTTP client/server framework"},
		{"http.client", []string{"http.client."}, "http", "Standard library HTTP client"},
		{"httplib2", []string{"httplib2."}, "http", "HTTP client with caching and authentication"},
		{"grequests", []string{"grequests."}, "http", "Gevent-based async wrapper over requests"},

		{"NumPy", []string{"numpy."}, "data_science", "N-dimensional array computation"},
		{"Pandas", []string{"pandas."}, "data_science", "Tabular data manipulation and analysis"},
		{"scikit-learn", []string{"sklearn."}, "data_science", "Classical machine learning toolkit"},
		{"TensorFlow", []string{"tensorflow."}, "data_science", "Deep learning framework"},
		{"PyTorch", []string{"torch."}, "data_science", "Deep learning framework"},
		{"SciPy", []string{"scipy."}, "data_science", "Scientific computing routines"},
		{"Matplotlib", []string{"matplotlib."}, "data_science", "Plotting and visualization"},
		{"Seaborn", []string{"seaborn."}, "data_science", "Statistical data visualization over matplotlib"},
		{"Keras", []string{"keras."}, "data_science", "High-level neural network API"},
		{"XGBoost", []string{"xgboost."}, "data_science", "Gradient boosting library"},
		{"statsmodels", []string{"statsmodels."}, "data_science", "Statistical modeling and tests"},

		{"json", []string{"json."}, "serialization", "Standard library JSON encode/decode"},
		{"pickle", []string{"pickle."}, "serialization", "Standard library object serialization"},
		{"PyYAML", []string{"yaml."}, "serialization", "YAML parsing and emission"},
		{"msgpack", []string{"msgpack."}, "serialization", "MessagePack binary serialization"},
		{"marshmallow", []string{"marshmallow."}, "serialization", "Schema-based (de)serialization"},
		{"protobuf", []string{"google.protobuf."}, "serialization", "Protocol Buffers runtime"},
		{"orjson", []string{"orjson."}, "serialization", "Fast JSON library"},

		{"logging", []string{"logging."}, "logging", "Standard library structured logging"},
		{"loguru", []string{"loguru."}, "logging", "Opinionated drop-in logging replacement"},
		{"structlog", []string{"structlog."}, "logging", "Structured logging for Python"},

		{"datetime", []string{"datetime."}, "stdlib", "Standard library date/time types"},
		{"collections", []string{"collections."}, "stdlib", "Standard library container datatypes"},
		{"os", []string{"os."}, "stdlib", "Standard library OS interface"},
		{"subprocess", []string{"subprocess."}, "stdlib", "Standard library process spawning"},
		{"hashlib", []string{"hashlib."}, "stdlib", "Standard library secure hashes"},
		{"re", []string{"re."}, "stdlib", "Standard library regular expressions"},
		{"itertools", []string{"itertools."}, "stdlib", "Standard library iterator building blocks"},
		{"functools", []string{"functools."}, "stdlib", "Standard library higher-order functions"},
		{"pathlib", []string{"pathlib."}, "stdlib", "Standard library object-oriented filesystem paths"},
		{"typing", []string{"typing."}, "stdlib", "Standard library type hint constructs"},
		{"enum", []string{"enum."}, "stdlib", "Standard library enumerations"},
		{"dataclasses", []string{"dataclasses."}, "stdlib", "Standard library data class decorator"},
		{"abc", []string{"abc."}, "stdlib", "Standard library abstract base classes"},
		{"io", []string{"io."}, "stdlib", "Standard library stream handling"},
		{"sys", []string{"sys."}, "stdlib", "Standard library interpreter access"},
		{"threading", []string{"threading."}, "stdlib", "Standard library thread-based parallelism"},
		{"multiprocessing", []string{"multiprocessing."}, "stdlib", "Standard library process-based parallelism"},
		{"asyncio", []string{"asyncio."}, "stdlib", "Standard library asynchronous I/O"},
		{"socket", []string{"socket."}, "stdlib", "Standard library low-level networking"},
		{"struct", []string{"struct."}, "stdlib", "Standard library binary data packing"},
		{"base64", []string{"base64."}, "stdlib", "Standard library base64 encoding"},
		{"uuid", []string{"uuid."}, "stdlib", "Standard library UUID generation"},
		{"random", []string{"random."}, "stdlib", "Standard library pseudo-random generation"},
		{"math", []string{"math."}, "stdlib", "Standard library mathematical functions"},
		{"time", []string{"time."}, "stdlib", "Standard library time access"},
		{"csv", []string{"csv."}, "stdlib", "Standard library CSV reading/writing"},
		{"sqlite3", []string{"sqlite3."}, "stdlib", "Standard library SQLite bindings"},
		{"argparse", []string{"argparse."}, "stdlib", "Standard library CLI argument parsing"},

		{"SQLAlchemy", []string{"sqlalchemy."}, "orm", "SQL toolkit and ORM"},
		{"Peewee", []string{"peewee."}, "orm", "Small expressive ORM"},
		{"Tortoise ORM", []string{"tortoise."}, "orm", "Async ORM inspired by Django's"},
		{"psycopg2", []string{"psycopg2."}, "database", "PostgreSQL database adapter"},
		{"PyMySQL", []string{"pymysql."}, "database", "Pure-Python MySQL client"},
		{"redis-py", []string{"redis."}, "database", "Redis client library"},
		{"pymongo", []string{"pymongo."}, "database", "MongoDB driver"},

		{"Celery", []string{"celery."}, "messaging", "Distributed task queue"},
		{"kombu", []string{"kombu."}, "messaging", "Messaging library underlying Celery"},
		{"pika", []string{"pika."}, "messaging", "RabbitMQ (AMQP) client"},
		{"kafka-python", []string{"kafka."}, "messaging", "Kafka client library"},

		{"boto3", []string{"boto3."}, "cloud", "AWS SDK for Python"},
		{"google-cloud", []string{"google.cloud."}, "cloud", "Google Cloud client libraries"},
		{"azure-sdk", []string{"azure."}, "cloud", "Azure SDK for Python"},

		{"Click", []string{"click."}, "cli", "Composable command line interface toolkit"},
		{"Typer", []string{"typer."}, "cli", "Typed CLI framework built on Click"},

		{"Pydantic", []string{"pydantic."}, "validation", "Data validation via type annotations"},
		{"Cerberus", []string{"cerberus."}, "validation", "Lightweight data validation"},

		{"Jinja2", []string{"jinja2."}, "template", "Template engine used by Flask and others"},

		{"Authlib", []string{"authlib."}, "auth", "OAuth/OIDC client and server toolkit"},
		{"PyJWT", []string{"jwt."}, "auth", "JSON Web Token encode/decode"},
		{"passlib", []string{"passlib."}, "auth", "Password hashing library"},
	}
}

var frameworkTable = LoadFrameworks()

// matchesPrefix reports whether fqn is covered by prefix, either as an exact
// match of the prefix with its trailing dot trimmed, or as a dotted-path
// descendant of it.
func matchesPrefix(fqn, prefix string) bool {
	trimmed := strings.TrimSuffix(prefix, ".")
	return fqn == trimmed || strings.HasPrefix(fqn, prefix)
}

// IsKnownFramework reports whether fqn belongs to a recognized framework or
// standard-library module, returning the matching Framework if so.
func IsKnownFramework(fqn string) (bool, *Framework) {
	for i := range frameworkTable {
		fw := &frameworkTable[i]
		for _, prefix := range fw.Prefixes {
			if matchesPrefix(fqn, prefix) {
				return true, fw
			}
		}
	}
	return false, nil
}

// GetFrameworkCategory returns the category of the framework owning fqn, or
// "" if fqn does not belong to a known framework.
func GetFrameworkCategory(fqn string) string {
	if isKnown, fw := IsKnownFramework(fqn); isKnown {
		return fw.Category
	}
	return ""
}

// GetFrameworkName returns the display name of the framework owning fqn, or
// "" if fqn does not belong to a known framework.
func GetFrameworkName(fqn string) string {
	if isKnown, fw := IsKnownFramework(fqn); isKnown {
		return fw.Name
	}
	return ""
}
