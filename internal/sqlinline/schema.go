package sqlinline

// QCreateSupportersSchema is idempotent. The notify channel is passed to the
// trigger function as its first argument; %s is filled by infra.EnsureSchema.
const QCreateSupportersSchema = `--sql ecbe5d7d-c974-40c0-9df5-170e7c722288
create table if not exists supporters (
    id uuid primary key default gen_random_uuid(),
    name text not null check (length(btrim(name)) > 0),
    amount numeric(12, 2) not null check (amount >= 0),
    message text,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create index if not exists idx_supporters_amount on supporters (amount desc);

create or replace function notify_supporters_change() returns trigger as $$
declare
    row_id uuid;
begin
    if tg_op = 'DELETE' then
        row_id := old.id;
    else
        row_id := new.id;
    end if;
    perform pg_notify(tg_argv[0], json_build_object('op', tg_op, 'table', tg_table_name, 'id', row_id)::text);
    return null;
end;
$$ language plpgsql;

drop trigger if exists supporters_notify on supporters;
create trigger supporters_notify
after insert or update or delete on supporters
for each row execute function notify_supporters_change('%s');
`
