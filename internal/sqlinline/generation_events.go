package sqlinline

const QInsertGenerationEvent = `--sql 3b9e61d4-5f2a-4c8e-9d17-a4c0e2f7b518
insert into generation_events(id, session_id, flow, action, call, status, error, latency_ms, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, nullif($6::text, ''), $7::int, $8::timestamptz);
`

const QGenerationEventSummary = `--sql 9c42d7a0-81e3-4b6f-a5d9-2e7f10c8b364
select
  flow,
  call,
  status,
  count(*)::bigint as total,
  coalesce(avg(latency_ms), 0)::float8 as avg_latency_ms
from generation_events
where created_at >= $1::timestamptz
group by flow, call, status
order by flow, call, status;
`

const QCreateGenerationEvents = `--sql e7a15c93-2d08-4f6b-b3c1-58d9fa4e0c27
create table if not exists generation_events (
  id uuid primary key,
  session_id uuid not null,
  flow text not null,
  action text not null,
  call text not null,
  status text not null,
  error text,
  latency_ms int not null default 0,
  created_at timestamptz not null default now()
);
`

const QCreateIntegrationTokens = `--sql 51f0c8e6-7a3d-4b92-8e05-c6d2a9b17f48
create table if not exists integration_tokens (
  id uuid primary key,
  provider text not null unique,
  token text not null,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

// Schema lists the statements that create every table the service touches.
var Schema = []string{QCreateIntegrationTokens, QCreateGenerationEvents}
