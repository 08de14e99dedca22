package schema

// builtinTables is the representative slice of the ~60-table model spec.md
// §3.1 describes. It covers every entity the component design names a
// concrete extractor/graph-builder/rule consumer for; additional tables can
// be registered at runtime via Registry.Register without touching this file.
var builtinTables = []Table{
	{
		Name: "files",
		Columns: []Column{
			{Name: "path", Type: "TEXT", PrimaryKey: true},
			{Name: "language", Type: "TEXT"},
			{Name: "size_bytes", Type: "INTEGER"},
			{Name: "sha256", Type: "TEXT"},
			{Name: "mtime", Type: "INTEGER"},
		},
	},
	{
		Name: "symbols",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "path", Type: "TEXT"},
			{Name: "name", Type: "TEXT"},
			{Name: "kind", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "parent_class", Type: "TEXT", Nullable: true},
			{Name: "scope", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "path", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
		Indexes:     []Index{{Name: "idx_symbols_path_name_line", Columns: []string{"path", "name", "line"}, Unique: true}},
	},
	{
		Name: "refs",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "src_path", Type: "TEXT"},
			{Name: "kind", Type: "TEXT"}, // import | call | ref
			{Name: "value", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
		},
		ForeignKeys: []ForeignKey{{Column: "src_path", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
		Indexes:     []Index{{Name: "idx_refs_src_kind", Columns: []string{"src_path", "kind"}}},
	},
	{
		Name: "assignments",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "target_var", Type: "TEXT"},
			{Name: "source_expr", Type: "TEXT"},
			{Name: "scope", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "assignment_sources",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "assignment_id", Type: "INTEGER"},
			{Name: "source_var", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "assignment_id", RefTable: "assignments", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "function_call_args",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "callee_function", Type: "TEXT"},
			{Name: "argument_index", Type: "INTEGER"},
			{Name: "argument_expr", Type: "TEXT"},
			{Name: "callee_file_path", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
		Indexes:     []Index{{Name: "idx_fca_callee", Columns: []string{"callee_function"}}},
	},
	{
		Name: "function_return_sources",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "function_name", Type: "TEXT"},
			{Name: "return_var", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "api_endpoints",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "method", Type: "TEXT"}, // GET|POST|...
			{Name: "pattern", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "api_endpoint_controls",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "endpoint_id", Type: "INTEGER"},
			{Name: "control_name", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "endpoint_id", RefTable: "api_endpoints", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "sql_queries",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "query_text", Type: "TEXT"},
			{Name: "command", Type: "TEXT"}, // SELECT|INSERT|UPDATE|DELETE
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "sql_query_tables",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "query_id", Type: "INTEGER"},
			{Name: "table_name", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "query_id", RefTable: "sql_queries", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "jwt_patterns",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "type", Type: "TEXT"},          // encode|decode|verify
			{Name: "secret_source", Type: "TEXT"}, // env|hardcoded|var
			{Name: "algorithms", Type: "TEXT"},
			{Name: "allows_none", Type: "INTEGER"},
			{Name: "has_confusion", Type: "INTEGER"},
			{Name: "sensitive_fields", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "python_orm_models",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "class_name", Type: "TEXT"},
			{Name: "orm_kind", Type: "TEXT"}, // sqlalchemy|django
			{Name: "table_name", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "python_orm_fields",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "model_id", Type: "INTEGER"},
			{Name: "field_name", Type: "TEXT"},
			{Name: "field_type", Type: "TEXT"},
			{Name: "constraints", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", RefTable: "python_orm_models", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "orm_relationships",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "model_id", Type: "INTEGER"},
			{Name: "target_model", Type: "TEXT"},
			{Name: "cascade", Type: "TEXT", Nullable: true},
			{Name: "back_populates", Type: "TEXT", Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", RefTable: "python_orm_models", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "react_components",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "react_hooks",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "component_id", Type: "INTEGER"},
			{Name: "hook_name", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
		},
		ForeignKeys: []ForeignKey{{Column: "component_id", RefTable: "react_components", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "react_hook_dependencies",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "hook_id", Type: "INTEGER"},
			{Name: "dependency", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "hook_id", RefTable: "react_hooks", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "cfg_blocks",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "function", Type: "TEXT"},
			{Name: "block_id", Type: "INTEGER"},
			{Name: "kind", Type: "TEXT"}, // entry|exit|branch|loop|try|except
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "cfg_edges",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "block_id", Type: "INTEGER"},
			{Name: "successor", Type: "INTEGER"},
		},
		ForeignKeys: []ForeignKey{{Column: "block_id", RefTable: "cfg_blocks", RefColumn: "id", OnDelete: "CASCADE"}},
	},
	{
		Name: "env_var_usage",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
			{Name: "access", Type: "TEXT"}, // read|write
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "variable_usage",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
			{Name: "access", Type: "TEXT"},
			{Name: "scope_level", Type: "TEXT"},
		},
		ForeignKeys: []ForeignKey{{Column: "file", RefTable: "files", RefColumn: "path", OnDelete: "CASCADE"}},
	},
	{
		Name: "extraction_errors",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "file", Type: "TEXT"},
			{Name: "phase", Type: "TEXT"},
			{Name: "message", Type: "TEXT"},
			{Name: "created_at", Type: "INTEGER"},
		},
	},
	{
		Name: "findings_consolidated",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "rule_name", Type: "TEXT"},
			{Name: "file", Type: "TEXT"},
			{Name: "line", Type: "INTEGER"},
			{Name: "severity", Type: "TEXT"},
			{Name: "cwe", Type: "TEXT", Nullable: true},
			{Name: "category", Type: "TEXT"},
			{Name: "message", Type: "TEXT"},
		},
	},
	{
		Name: "schema_migrations",
		Columns: []Column{
			{Name: "version", Type: "TEXT", PrimaryKey: true},
			{Name: "applied_at", Type: "INTEGER"},
		},
	},
}
